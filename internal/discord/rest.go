package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// NewSession creates a REST-only session. The bot never opens a gateway
// connection; interactions arrive over HTTP.
func NewSession(botToken string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return s, nil
}

// Responder delivers deferred interaction replies through the webhook
// endpoints of the interaction token.
type Responder struct {
	session *discordgo.Session
}

func NewResponder(s *discordgo.Session) *Responder {
	return &Responder{session: s}
}

// EditOriginal replaces the deferred "thinking" message with content.
func (r *Responder) EditOriginal(ctx context.Context, i *discordgo.Interaction, content string) error {
	_, err := r.session.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content: &content,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("edit original response: %w", err)
	}
	return nil
}

// FollowUp posts an additional ephemeral message.
func (r *Responder) FollowUp(ctx context.Context, i *discordgo.Interaction, content string) error {
	_, err := r.session.FollowupMessageCreate(i, false, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create follow-up message: %w", err)
	}
	return nil
}

// ChannelNotifier posts notices to a fixed channel.
type ChannelNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewChannelNotifier(s *discordgo.Session, channelID string) *ChannelNotifier {
	return &ChannelNotifier{session: s, channelID: channelID}
}

func (n *ChannelNotifier) Notify(ctx context.Context, content string) error {
	for _, chunk := range SplitMessage(content, SafeMessageLimit) {
		if _, err := n.session.ChannelMessageSend(n.channelID, chunk, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("post to channel %s: %w", n.channelID, err)
		}
	}
	return nil
}

// DeployCommands overwrites the application's commands. An empty guildID
// deploys them globally.
func DeployCommands(ctx context.Context, s *discordgo.Session, appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	cmds, err := s.ApplicationCommandBulkOverwrite(appID, guildID, Commands(), discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("overwrite application commands: %w", err)
	}
	return cmds, nil
}
