package model

import "strings"

// ChatProvider identifies the webhook target a notification is formatted for.
type ChatProvider string

const (
	ChatRocketChat ChatProvider = "rocketchat"
	ChatDiscord    ChatProvider = "discord"
	ChatMSTeams    ChatProvider = "msteams"
	ChatSlack      ChatProvider = "slack"
)

// ChatProviders lists every supported provider, in the order they appear in
// CLI help text.
func ChatProviders() []ChatProvider {
	return []ChatProvider{ChatRocketChat, ChatDiscord, ChatMSTeams, ChatSlack}
}

// IsValid reports whether p names a supported chat provider.
func (p ChatProvider) IsValid() bool {
	switch p {
	case ChatRocketChat, ChatDiscord, ChatMSTeams, ChatSlack:
		return true
	}
	return false
}

// WebhookEnvVar returns the environment variable the webhook URL for this
// provider is read from, e.g. DISCORD_WEBHOOK.
func (p ChatProvider) WebhookEnvVar() string {
	return strings.ToUpper(string(p)) + "_WEBHOOK"
}
