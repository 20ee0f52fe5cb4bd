// Package notifier собирает дайджест за день и рассылает его по каналам доставки.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/kovalyov-valentin/news-digest/internal/metrics"
	"github.com/kovalyov-valentin/news-digest/internal/model"
	"github.com/kovalyov-valentin/news-digest/internal/render"
)

type Selector interface {
	Select(ctx context.Context, day time.Time) (model.Selection, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Готовый к отправке дайджест в обоих форматах
type Document struct {
	Subject  string
	HTML     string
	Markdown string
}

// Канал доставки: почта, телеграм канал
type Channel interface {
	Name() string
	Deliver(ctx context.Context, doc Document) error
}

type Notifier struct {
	selector Selector
	// Может быть nil, тогда без вступления
	summarizer Summarizer
	channels   []Channel
	subject    string

	log     *zap.Logger
	metrics *metrics.Metrics
}

func New(
	selector Selector,
	summarizer Summarizer,
	channels []Channel,
	subject string,
	log *zap.Logger,
	m *metrics.Metrics,
) *Notifier {
	return &Notifier{
		selector:   selector,
		summarizer: summarizer,
		channels:   channels,
		subject:    subject,
		log:        log,
		metrics:    m,
	}
}

// Build выбирает строки за день и рисует документ, ничего не отправляя
func (n *Notifier) Build(ctx context.Context, day time.Time) (model.Selection, Document, error) {
	sel, err := n.selector.Select(ctx, day)
	if err != nil {
		return sel, Document{}, err
	}

	meta := render.Meta{
		Title: n.subject,
		Intro: n.intro(ctx, sel),
	}

	html, err := render.HTML(sel, meta)
	if err != nil {
		return sel, Document{}, fmt.Errorf("%w: %v", model.ErrDeliveryFailure, err)
	}

	doc := Document{
		Subject:  fmt.Sprintf("%s, %s", subjectOrDefault(n.subject), sel.Date.Format("2 Jan 2006")),
		HTML:     html,
		Markdown: render.Markdown(sel, meta),
	}

	return sel, doc, nil
}

// SendDigest собирает дайджест за day и отправляет его во все каналы.
// Пустой день ничего не отправляет. Ошибка любого канала возвращается как ErrDeliveryFailure, повторов нет.
func (n *Notifier) SendDigest(ctx context.Context, day time.Time) (model.Selection, error) {
	if len(n.channels) == 0 {
		return model.Selection{}, fmt.Errorf("%w: no delivery channels configured", model.ErrDeliveryFailure)
	}

	sel, doc, err := n.Build(ctx, day)
	if err != nil {
		return sel, err
	}

	if sel.Empty() {
		n.log.Info("nothing to send for the day, skipping delivery",
			zap.String("date", sel.Date.Format(time.DateOnly)),
		)
		return sel, nil
	}

	var errs []error
	for _, ch := range n.channels {
		if err := ch.Deliver(ctx, doc); err != nil {
			n.metrics.Deliveries.WithLabelValues(ch.Name(), "failed").Inc()
			n.log.Error("digest delivery failed", zap.String("channel", ch.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}

		n.metrics.Deliveries.WithLabelValues(ch.Name(), "sent").Inc()
		n.log.Info("digest delivered",
			zap.String("channel", ch.Name()),
			zap.String("date", sel.Date.Format(time.DateOnly)),
			zap.Int("top", len(sel.Top)),
			zap.Int("more", len(sel.More)),
		)
	}

	if len(errs) > 0 {
		return sel, fmt.Errorf("%w: %w", model.ErrDeliveryFailure, errors.Join(errs...))
	}

	return sel, nil
}

// Вступление пишем по заголовкам верхнего блока. Ошибка summarizer не должна ломать рассылку
func (n *Notifier) intro(ctx context.Context, sel model.Selection) string {
	if n.summarizer == nil || len(sel.Top) == 0 {
		return ""
	}

	headlines := strings.Join(lo.Map(sel.Top, func(r model.DigestRow, _ int) string {
		return "- " + r.Title
	}), "\n")

	intro, err := n.summarizer.Summarize(ctx, headlines)
	if err != nil {
		n.log.Warn("failed to summarize digest, sending without intro", zap.Error(err))
		return ""
	}

	return intro
}

func subjectOrDefault(subject string) string {
	if subject = strings.TrimSpace(subject); subject != "" {
		return subject
	}

	return "Daily brief"
}
