// Package override implements the reversible safety-margin toggle on line
// items. The pre-override quantity is stashed as a `|BASE:<n>` tag inside the
// item's free-text notes so recalculation cannot destroy it.
package override

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/conviteapp/convite-backend/pkg/db/models"
)

const (
	tagPrefix = "|BASE:"
	// marginRatio is the safety margin applied when an item is pinned.
	marginRatio = 0.10
)

var tagPattern = regexp.MustCompile(`\|BASE:(\d+)`)

// Mark pins the item: quantity grows by 10% (at least 1 unit) and the prior
// quantity is recorded in the notes tag. Any stale tag is stripped first so
// at most one tag ever exists.
func Mark(item models.LineItem) models.LineItem {
	base := item.Quantity
	extra := int(math.Ceil(float64(base) * marginRatio))
	if extra < 1 {
		extra = 1
	}

	notes := stripTag(noteText(item))
	notes += fmt.Sprintf("%s%d", tagPrefix, base)

	item.Quantity = base + extra
	item.Notes = notePtr(notes)
	item.IsOverride = true
	return item
}

// Clear unpins the item. If the notes tag survived, the exact pre-override
// quantity comes back; otherwise the margin is divided back out, which is a
// lossy approximation. Clearing an item that is not overridden is a no-op.
func Clear(item models.LineItem) models.LineItem {
	if !item.IsOverride {
		return item
	}

	notes := noteText(item)
	if match := tagPattern.FindStringSubmatch(notes); match != nil {
		if base, err := strconv.Atoi(match[1]); err == nil {
			item.Quantity = base
			item.Notes = notePtr(stripTag(notes))
			item.IsOverride = false
			return item
		}
	}

	restored := int(math.Round(float64(item.Quantity) / (1 + marginRatio)))
	if restored < 0 {
		restored = 0
	}
	item.Quantity = restored
	item.Notes = notePtr(stripTag(notes))
	item.IsOverride = false
	return item
}

// BaseQuantity extracts the recorded pre-override quantity, if present.
func BaseQuantity(item models.LineItem) (int, bool) {
	match := tagPattern.FindStringSubmatch(noteText(item))
	if match == nil {
		return 0, false
	}
	base, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return base, true
}

func stripTag(notes string) string {
	return tagPattern.ReplaceAllString(notes, "")
}

func noteText(item models.LineItem) string {
	if item.Notes == nil {
		return ""
	}
	return *item.Notes
}

func notePtr(notes string) *string {
	if strings.TrimSpace(notes) == "" {
		return nil
	}
	return &notes
}
