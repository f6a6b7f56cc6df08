package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SilverPhantom1/zypos-sub000/internal/dto"
	"github.com/SilverPhantom1/zypos-sub000/internal/model"
)

// Unit is one physical item within a sale line — the granularity at which
// void/return/exchange decisions are made. Units exist only transiently while
// an amendment is computed; they are derived from the sale's current lines,
// never persisted, and never re-fetched mid-operation.
type Unit struct {
	ProductID  uuid.UUID
	UnitPrice  decimal.Decimal
	SourceLine int
	Selected   bool
	Damaged    bool
}

// expandUnits derives quantity copies per line. The count of units for a
// product across the sale always equals that line's current quantity.
func expandUnits(sale *model.Sale) []Unit {
	var units []Unit
	for i, line := range sale.Lines {
		for n := 0; n < line.Quantity; n++ {
			units = append(units, Unit{
				ProductID:  line.ProductID,
				UnitPrice:  line.UnitPrice,
				SourceLine: i,
			})
		}
	}
	return units
}

// markSelection applies the operator's per-line selections onto the derived
// units: the first Count units of each referenced line are selected, and the
// first DamagedCount of those are marked damaged. Units within a line are
// identical, so which copies get marked is immaterial.
func markSelection(units []Unit, sale *model.Sale, selections []dto.UnitSelection) error {
	// Validate the aggregate first: several selections may target the same
	// line, and their combined count must still fit within it. Per-selection
	// checks alone would let duplicates silently cap at the line quantity.
	requested := make(map[int]int)
	for _, sel := range selections {
		if sel.LineIndex < 0 || sel.LineIndex >= len(sale.Lines) {
			return fmt.Errorf("%w: line index %d out of range", ErrUnitSelection, sel.LineIndex)
		}
		if sel.Count < 1 {
			continue
		}
		if sel.DamagedCount < 0 || sel.DamagedCount > sel.Count {
			return fmt.Errorf("%w: damaged count exceeds selection", ErrUnitSelection)
		}
		requested[sel.LineIndex] += sel.Count
		if requested[sel.LineIndex] > sale.Lines[sel.LineIndex].Quantity {
			return fmt.Errorf("%w: line %d holds %d units", ErrUnitSelection, sel.LineIndex, sale.Lines[sel.LineIndex].Quantity)
		}
	}

	for _, sel := range selections {
		if sel.Count < 1 {
			continue
		}
		selected, damaged := 0, 0
		for i := range units {
			if units[i].SourceLine != sel.LineIndex || units[i].Selected {
				continue
			}
			if selected == sel.Count {
				break
			}
			units[i].Selected = true
			if damaged < sel.DamagedCount {
				units[i].Damaged = true
				damaged++
			}
			selected++
		}
	}
	return nil
}

// unitGroup aggregates selected units per product: total count and the
// good/damaged split that drives restocking and the audit breakdown.
type unitGroup struct {
	ProductID uuid.UUID
	Quantity  int
	Good      int
	Damaged   int
}

// groupSelected folds the selected units into per-product groups, preserving
// first-seen product order for deterministic restock sequencing.
func groupSelected(units []Unit) []unitGroup {
	index := make(map[uuid.UUID]int)
	var groups []unitGroup
	for _, u := range units {
		if !u.Selected {
			continue
		}
		i, ok := index[u.ProductID]
		if !ok {
			i = len(groups)
			index[u.ProductID] = i
			groups = append(groups, unitGroup{ProductID: u.ProductID})
		}
		groups[i].Quantity++
		if u.Damaged {
			groups[i].Damaged++
		} else {
			groups[i].Good++
		}
	}
	return groups
}

// selectedPerLine counts how many selected units were drawn from each line,
// used to recompute the remaining line quantities.
func selectedPerLine(units []Unit) map[int]int {
	counts := make(map[int]int)
	for _, u := range units {
		if u.Selected {
			counts[u.SourceLine]++
		}
	}
	return counts
}
