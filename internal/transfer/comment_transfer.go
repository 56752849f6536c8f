package transfer

// Comment is a platform comment as fetched from the Graph API. Comments are
// transient: they are classified and possibly replied to, never persisted.
type Comment struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	MediaID   string `json:"media_id,omitempty"`
	From      struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"from"`
}

// CommenterName returns the display handle to mention in a reply.
func (c Comment) CommenterName() string {
	if c.From.Username != "" {
		return c.From.Username
	}
	return "there"
}

// RuleActions is the structured payload stored in automation_rules.actions.
type RuleActions struct {
	AutoReplyEnabled        bool     `json:"auto_reply_enabled"`
	ResponseTemplate        string   `json:"response_template,omitempty"`
	SelectedPostIDs         []string `json:"selected_post_ids,omitempty"`
	SelectedPlatformPostIDs []string `json:"selected_platform_post_ids,omitempty"`
}

// MonitoredPostIDs merges the platform-native post ids with the dashboard
// post selection, platform ids first.
func (a RuleActions) MonitoredPostIDs() []string {
	ids := make([]string, 0, len(a.SelectedPlatformPostIDs)+len(a.SelectedPostIDs))
	ids = append(ids, a.SelectedPlatformPostIDs...)
	ids = append(ids, a.SelectedPostIDs...)
	return ids
}
