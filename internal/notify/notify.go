// Package notify delivers the ranked recommendation list through the
// configured channels: a local HTML file (always), AWS SES email and
// Telegram. It consumes the pipeline's Result and has no opinion on how the
// numbers were produced.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/sgbadvisor/internal/config"
	"github.com/aristath/sgbadvisor/internal/domain"
)

// Notification modes accepted in SGB_MODE.
const (
	ModeEmail    = "email"
	ModeTelegram = "telegram"
	ModeBoth     = "both"
	ModeNone     = "none"
)

// ResolveModes decides which channels to deliver through. An explicit
// SGB_MODE wins; "none" beats everything, "both" expands. With no mode set,
// the channels are guessed from which credentials are present. No resolvable
// channel is an error, not a silent no-op.
func ResolveModes(cfg *config.Config) (map[string]bool, error) {
	modes := make(map[string]bool)
	for _, m := range strings.Split(cfg.Mode, ",") {
		if m = strings.TrimSpace(m); m != "" {
			modes[m] = true
		}
	}

	switch {
	case modes[ModeNone]:
		return map[string]bool{ModeNone: true}, nil
	case modes[ModeBoth]:
		return map[string]bool{ModeEmail: true, ModeTelegram: true}, nil
	case len(modes) > 0:
		resolved := make(map[string]bool)
		for _, known := range []string{ModeEmail, ModeTelegram} {
			if modes[known] {
				resolved[known] = true
			}
		}
		if len(resolved) == 0 {
			return nil, fmt.Errorf("could not resolve notification mode from SGB_MODE=%q", cfg.Mode)
		}
		return resolved, nil
	}

	// Guess from which credentials are configured.
	guessed := make(map[string]bool)
	if cfg.Telegram.BotToken != "" {
		guessed[ModeTelegram] = true
	}
	if cfg.Email.AccessKey != "" {
		guessed[ModeEmail] = true
	}
	if len(guessed) == 0 {
		return nil, fmt.Errorf("could not guess notification mode: SGB_MODE is unset and no credentials are configured")
	}
	return guessed, nil
}

// EmailChannel delivers a result by email.
type EmailChannel interface {
	Send(ctx context.Context, result *domain.Result) error
}

// TelegramChannel delivers a result to Telegram chats.
type TelegramChannel interface {
	Validate() error
	Send(result *domain.Result, htmlPath string) error
}

// Notifier fans a result out to every resolved channel.
type Notifier struct {
	cfg      *config.Config
	email    EmailChannel
	telegram TelegramChannel
	log      zerolog.Logger
}

// New creates the notifier.
func New(cfg *config.Config, email EmailChannel, telegram TelegramChannel, log zerolog.Logger) *Notifier {
	return &Notifier{
		cfg:      cfg,
		email:    email,
		telegram: telegram,
		log:      log.With().Str("component", "notify").Logger(),
	}
}

// Notify writes the local HTML output and then delivers through each
// resolved channel. Channel failures are fatal — a run whose notifications
// cannot be delivered has failed.
func (n *Notifier) Notify(ctx context.Context, result *domain.Result) error {
	htmlPath, err := WriteHTMLFile(result)
	if err != nil {
		return err
	}
	n.log.Info().Str("path", htmlPath).Msg("Wrote output HTML")

	modes, err := ResolveModes(n.cfg)
	if err != nil {
		return err
	}

	if modes[ModeNone] {
		n.log.Info().Msg("Notification mode is none; output written to file only")
		return nil
	}

	if modes[ModeTelegram] {
		if err := n.telegram.Validate(); err != nil {
			return fmt.Errorf("could not send message via telegram: %w", err)
		}
		if err := n.telegram.Send(result, htmlPath); err != nil {
			return fmt.Errorf("could not send message via telegram: %w", err)
		}
		n.log.Info().Msg("Sent Telegram notification")
	}

	if modes[ModeEmail] {
		if err := n.email.Send(ctx, result); err != nil {
			return fmt.Errorf("could not send email via AWS SES: %w", err)
		}
		n.log.Info().Msg("Sent email notification")
	}

	return nil
}
