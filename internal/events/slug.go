package events

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"github.com/sethvargo/go-retry"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	pkgerrors "github.com/andrelucena/celebra-backend/pkg/errors"
)

const (
	slugMaxAttempts = 10
	slugSuffixMin   = 1000
	slugSuffixMax   = 9999
)

var errSlugTaken = errors.New("slug already taken")

// SlugProber answers whether a candidate slug is already in use.
type SlugProber interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases a string and strips diacritics. Shared by slug building
// and the case/diacritic-insensitive public search.
func Fold(value string) string {
	folded, _, err := transform.String(stripMarks, value)
	if err != nil {
		folded = value
	}
	return strings.ToLower(folded)
}

// SlugBase builds the deterministic slug prefix: first two hosts joined with
// a hyphen, then the event name, folded and reduced to [a-z0-9-].
func SlugBase(name string, hosts []string) string {
	parts := make([]string, 0, 3)
	for i, host := range hosts {
		if i == 2 {
			break
		}
		if trimmed := strings.TrimSpace(host); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	parts = append(parts, strings.TrimSpace(name))

	folded := Fold(strings.Join(parts, "-"))

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range folded {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// GenerateSlug appends random 4-digit suffixes to the base and probes the
// store until an unused slug is found, giving up after a bounded number of
// attempts. The DB unique index on slug closes the residual probe/insert race.
func GenerateSlug(ctx context.Context, probe SlugProber, name string, hosts []string) (string, error) {
	base := SlugBase(name, hosts)
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "event name and hosts produce an empty slug")
	}

	var slug string
	backoff := retry.WithMaxRetries(slugMaxAttempts-1, retry.NewConstant(time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		suffix := slugSuffixMin + rand.IntN(slugSuffixMax-slugSuffixMin+1)
		candidate := fmt.Sprintf("%s-%d", base, suffix)

		taken, err := probe.SlugExists(ctx, candidate)
		if err != nil {
			return err
		}
		if taken {
			return retry.RetryableError(errSlugTaken)
		}
		slug = candidate
		return nil
	})
	if err != nil {
		if errors.Is(err, errSlugTaken) {
			return "", pkgerrors.New(pkgerrors.CodeSlugGeneration, "could not find a free slug after bounded attempts")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "probing slug uniqueness")
	}
	return slug, nil
}
