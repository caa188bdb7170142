package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/earthshot/entity"
)

// EntityInfo is one row of the entity browser.
type EntityInfo struct {
	ID       entity.ID
	Kind     entity.Kind
	Phase    entity.Phase
	Position [3]float64
	Hits     int
}

type hitCounter interface{ Hits() int }

// EntityBrowser lists the registered collidables with filtering, sorting and
// paging. Selecting a row feeds the inspector.
type EntityBrowser struct {
	entities      []EntityInfo
	sortColumn    int
	sortAscending bool

	selected           entity.ID
	filterText         string
	maxEntitiesPerPage int
	currentPage        int
}

func NewEntityBrowser(maxEntitiesPerPage int) *EntityBrowser {
	return &EntityBrowser{
		sortAscending:      true,
		maxEntitiesPerPage: max(1, maxEntitiesPerPage),
	}
}

// Refresh rebuilds the rows from the registry's current contents.
func (eb *EntityBrowser) Refresh(list []entity.Entity) {
	eb.entities = eb.entities[:0]
	for _, e := range list {
		info := EntityInfo{
			ID:       e.ID(),
			Kind:     e.Kind(),
			Phase:    e.Phase(),
			Position: [3]float64(e.Position()),
		}
		if h, ok := e.(hitCounter); ok {
			info.Hits = h.Hits()
		}
		eb.entities = append(eb.entities, info)
	}
	eb.sortEntities()
}

// SortBy orders rows by column: 0 id, 1 kind, 2 phase, 3 hits.
func (eb *EntityBrowser) SortBy(column int, ascending bool) {
	eb.sortColumn = column
	eb.sortAscending = ascending
	eb.sortEntities()
}

func (eb *EntityBrowser) SetFilter(text string) { eb.filterText = text }

func (eb *EntityBrowser) Select(id entity.ID) { eb.selected = id }

// Selected is the chosen entity, or zero.
func (eb *EntityBrowser) Selected() entity.ID { return eb.selected }

func (eb *EntityBrowser) Render() {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
	}

	filtered := eb.Filtered()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("ID")
		imgui.TableSetupColumn("Kind")
		imgui.TableSetupColumn("Phase")
		imgui.TableSetupColumn("Hits")
		imgui.TableSetupColumn("Position")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.SortBy(int(spec.ColumnIndex()), spec.SortDirection() == imgui.SortDirectionAscending)
			sortSpecs.SetSpecsDirty(false)
			filtered = eb.Filtered()
		}

		start := min(eb.currentPage*eb.maxEntitiesPerPage, len(filtered))
		end := min(start+eb.maxEntitiesPerPage, len(filtered))

		for _, info := range filtered[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(fmt.Sprintf("%d", info.ID), eb.selected == info.ID, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selected = info.ID
			}

			imgui.TableNextColumn()
			imgui.Text(string(info.Kind))
			imgui.TableNextColumn()
			imgui.Text(info.Phase.String())
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", info.Hits))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%.1f, %.1f, %.1f", info.Position[0], info.Position[1], info.Position[2]))
		}

		imgui.EndTable()
	}

	if len(filtered) > eb.maxEntitiesPerPage {
		totalPages := (len(filtered) + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
		eb.currentPage = min(eb.currentPage, totalPages-1)
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		eb.currentPage = 0
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}

func (eb *EntityBrowser) sortEntities() {
	sort.SliceStable(eb.entities, func(i, j int) bool {
		a, b := eb.entities[i], eb.entities[j]
		if !eb.sortAscending {
			a, b = b, a
		}

		switch eb.sortColumn {
		case 1:
			return a.Kind < b.Kind
		case 2:
			return a.Phase < b.Phase
		case 3:
			return a.Hits < b.Hits
		default:
			return a.ID < b.ID
		}
	})
}

// Filtered returns the rows whose id, kind or phase contains the filter text.
func (eb *EntityBrowser) Filtered() []EntityInfo {
	if eb.filterText == "" {
		return eb.entities
	}

	filtered := make([]EntityInfo, 0, len(eb.entities))
	filterLower := strings.ToLower(eb.filterText)

	for _, info := range eb.entities {
		idStr := fmt.Sprintf("%d", info.ID)
		if !strings.Contains(idStr, filterLower) &&
			!strings.Contains(string(info.Kind), filterLower) &&
			!strings.Contains(strings.ToLower(info.Phase.String()), filterLower) {
			continue
		}
		filtered = append(filtered, info)
	}

	return filtered
}
