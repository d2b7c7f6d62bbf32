package domain

import (
	"context"
	"encoding/json"
	"time"
)

type Span struct {
	Name    string `json:"name"`
	startTs time.Time

	Elapsed *int64 `json:"elapsed"`
}

type profileKey string

const ContextProfileKey profileKey = "performanceProfile"

// GetProfile returns the profile stored in ctx. A throwaway profile
// is returned when ctx has none so callers never need to nil check.
func GetProfile(ctx context.Context) (profile *Profile, endProfile func()) {
	profile, ok := ctx.Value(ContextProfileKey).(*Profile)
	if !ok || profile == nil {
		profile, _ = NewProfile()
	}
	return profile, profile.End
}

func NewCtxWithProfile(ctx context.Context, profile *Profile) context.Context {
	return context.WithValue(ctx, ContextProfileKey, profile)
}

// Profile is simply a list of spans
type Profile struct {
	Spans   []*Span
	startTs time.Time
	TotalMs *int64
}

func (p *Profile) End() {
	if len(p.Spans) > 0 {
		p.Spans[len(p.Spans)-1].End()
	}
	t := time.Since(p.startTs).Milliseconds()
	if p.TotalMs == nil {
		p.TotalMs = &t
	}
}

func (s *Span) End() {
	if s.Elapsed == nil {
		t := time.Since(s.startTs).Milliseconds()
		s.Elapsed = &t
	}
}

func NewProfile() (newProfile *Profile, endNewProfile func()) {
	newProfile = &Profile{
		Spans:   []*Span{},
		startTs: time.Now(),
	}

	return newProfile, newProfile.End
}

func NewSpan(name string) (*Span, func()) {
	newSpan := &Span{
		Name:    name,
		startTs: time.Now(),
	}
	return newSpan, newSpan.End
}

// StartNewSpan ends the last span and begins a new one
// not thread safe
func (p *Profile) StartNewSpan(name string) (newSpan *Span, endSpan func()) {
	newSpan, endSpan = NewSpan(name)
	if len(p.Spans) > 0 {
		p.Spans[len(p.Spans)-1].End()
	}
	p.Spans = append(p.Spans, newSpan)
	return newSpan, endSpan
}

func (p *Profile) ToJsonBytes() ([]byte, error) {
	bytes, err := json.Marshal(p.Spans)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}
