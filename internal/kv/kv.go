// Package kv defines the string key-value port that every persisted
// collection and session marker is stored through, plus its adapters.
package kv

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// ErrUnavailable is returned by writes when no substrate is configured.
var ErrUnavailable = errors.New("kv: substrate unavailable")

// KV is a flat string store. Get reports found=false for missing keys
// without an error.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Unavailable stands in for an environment without persistence: reads find
// nothing and writes fail.
type Unavailable struct{}

func (Unavailable) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (Unavailable) Set(context.Context, string, string) error { return ErrUnavailable }

func (Unavailable) Delete(context.Context, string) error { return ErrUnavailable }

func (Unavailable) Keys(context.Context, string) ([]string, error) { return nil, nil }

type prefixed struct {
	inner  KV
	prefix string
}

// Prefixed scopes every key of inner under prefix. Keys returns names with
// the prefix stripped.
func Prefixed(inner KV, prefix string) KV {
	return &prefixed{inner: inner, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := p.inner.Keys(ctx, p.prefix+prefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, p.prefix))
	}
	return out, nil
}

func sortedWithPrefix(keys []string, prefix string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
