package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"

	"urenlogger/internal/discord"
	"urenlogger/internal/i18n"
	"urenlogger/internal/log"
)

// handleInteraction verifies and answers a Discord interaction. Commands are
// acknowledged with a deferred ephemeral response; the real reply is sent
// from a background goroutine once the command finishes.
func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if !discordgo.VerifyInteraction(r, s.cfg.PublicKey) {
		s.appMetrics.rejectedSignatures.Add(1)
		logger.WarnContext(ctx, "Rejected interaction with invalid signature",
			log.FieldClientIP, s.ips.ClientIP(r),
			log.FieldOperation, log.OpVerify)
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var interaction discordgo.Interaction
	if err := json.NewDecoder(r.Body).Decode(&interaction); err != nil {
		http.Error(w, "invalid interaction payload", http.StatusBadRequest)
		return
	}

	switch interaction.Type {
	case discordgo.InteractionPing:
		writeJSON(w, http.StatusOK, discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})

	case discordgo.InteractionApplicationCommand:
		name := interaction.ApplicationCommandData().Name
		if !discord.IsKnownCommand(name) {
			s.appMetrics.unknownCommands.Add(1)
			logger.WarnContext(ctx, "Unknown command", log.FieldCommand, name)
			writeJSON(w, http.StatusOK, ephemeral(discordgo.InteractionResponseChannelMessageWithSource, i18n.UnknownCommand(name)))
			return
		}

		writeJSON(w, http.StatusOK, ephemeral(discordgo.InteractionResponseDeferredChannelMessageWithSource, ""))

		s.inflight.Add(1)
		go s.runCommand(&interaction, logger)

	default:
		http.Error(w, fmt.Sprintf("unsupported interaction type %d", interaction.Type), http.StatusBadRequest)
	}
}

func ephemeral(t discordgo.InteractionResponseType, content string) discordgo.InteractionResponse {
	return discordgo.InteractionResponse{
		Type: t,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

// runCommand executes the command detached from the request and delivers the
// reply: the first chunk edits the deferred message, the rest are follow-ups.
func (s *Server) runCommand(i *discordgo.Interaction, logger *log.Logger) {
	defer s.inflight.Done()

	ctx, cancel := context.WithTimeout(log.NewContext(context.Background(), logger), s.cfg.CommandTimeout)
	defer cancel()

	start := time.Now()
	name := i.ApplicationCommandData().Name
	userID := discord.UserID(i)
	s.appMetrics.commandsTotal.Add(1)

	reply := s.execute(ctx, i, logger)
	chunks := discord.SplitMessage(reply, discord.SafeMessageLimit)
	if len(chunks) == 0 {
		chunks = []string{i18n.ErrGeneric}
	}

	fields := log.NewFields().WithCommand(name, userID, i.ID)

	if err := s.deps.Responder.EditOriginal(ctx, i, chunks[0]); err != nil {
		s.appMetrics.commandsFailed.Add(1)
		s.sl.LogError(ctx, "Failed to deliver command reply", err, log.ComponentDiscord, log.OpRespond, fields)
		return
	}
	for _, chunk := range chunks[1:] {
		if err := s.deps.Responder.FollowUp(ctx, i, chunk); err != nil {
			s.appMetrics.commandsFailed.Add(1)
			s.sl.LogError(ctx, "Failed to deliver follow-up message", err, log.ComponentDiscord, log.OpFollowUp, fields)
			return
		}
	}

	s.sl.LogCommandExecuted(ctx, name, userID, i.ID, len(chunks), time.Since(start))
}

func (s *Server) execute(ctx context.Context, i *discordgo.Interaction, logger *log.Logger) (reply string) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.ErrorContext(ctx, "Command panicked",
				log.FieldCommand, i.ApplicationCommandData().Name,
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()))
			reply = i18n.ErrGeneric
		}
	}()
	return s.deps.Commands.Execute(ctx, i)
}
