package eventbus

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Pattern matches events by source and detail-type. An empty slice matches any
// value for that field.
type Pattern struct {
	Sources     []string
	DetailTypes []string
}

func (p Pattern) Matches(env Envelope) bool {
	return contains(p.Sources, env.Source) && contains(p.DetailTypes, env.DetailType)
}

func contains(values []string, v string) bool {
	if len(values) == 0 {
		return true
	}
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// Rule binds a pattern to one or more dispatch targets.
type Rule struct {
	Name    string
	Pattern Pattern
	Targets []Target
}

// Router evaluates rules in declaration order and dispatches a published event
// to every target of every matching rule. An event matching no rule is dropped
// and logged; the publisher never sees that as an error.
type Router struct {
	rules []Rule
	log   *zap.Logger
}

func NewRouter(log *zap.Logger, rules ...Rule) *Router {
	return &Router{rules: rules, log: log}
}

// AddRule appends a rule to the table.
func (r *Router) AddRule(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Publish routes the event. A dispatch failure is returned to the caller as a
// retryable error; a no-match drop is not.
func (r *Router) Publish(ctx context.Context, env Envelope) error {
	matched := false
	var errs []error

	for _, rule := range r.rules {
		if !rule.Pattern.Matches(env) {
			continue
		}
		matched = true
		for _, target := range rule.Targets {
			if err := target.Dispatch(ctx, env); err != nil {
				r.log.Error("dispatch failed",
					zap.String("rule", rule.Name),
					zap.String("target", target.Name()),
					zap.String("event_id", env.ID),
					zap.Error(err),
				)
				errs = append(errs, fmt.Errorf("rule %s target %s: %w", rule.Name, target.Name(), err))
				continue
			}
			r.log.Info("event dispatched",
				zap.String("rule", rule.Name),
				zap.String("target", target.Name()),
				zap.String("event_id", env.ID),
			)
		}
	}

	if !matched {
		r.log.Warn("event matched no rule, dropping",
			zap.String("source", env.Source),
			zap.String("detail_type", env.DetailType),
			zap.String("event_id", env.ID),
		)
		return nil
	}

	return errors.Join(errs...)
}
