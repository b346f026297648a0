package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/fixedgate/ecs"
)

type EntityInfo struct {
	ID             ecs.EntityId
	Generation     uint32
	ComponentTypes []string
}

type EntityBrowserCache struct {
	entities      []EntityInfo
	sortColumn    int
	sortAscending bool
}

func NewEntityBrowser(maxEntitiesPerPage int) *EntityBrowser {
	return &EntityBrowser{
		cache: &EntityBrowserCache{
			sortColumn:    0,
			sortAscending: true,
		},
		maxEntitiesPerPage: maxEntitiesPerPage,
	}
}

func (eb *EntityBrowser) Render(storage *ecs.Storage) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.Refresh(storage)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
	}

	filteredEntities := eb.Filtered()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableSetupColumn("Generation")
		imgui.TableSetupColumn("Components")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.SortBy(int(spec.ColumnIndex()), spec.SortDirection() == imgui.SortDirectionAscending)
			sortSpecs.SetSpecsDirty(false)
			filteredEntities = eb.Filtered()
		}

		startIdx := min(eb.currentPage*eb.maxEntitiesPerPage, len(filteredEntities))
		endIdx := min(startIdx+eb.maxEntitiesPerPage, len(filteredEntities))

		for _, entity := range filteredEntities[startIdx:endIdx] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.selectedEntityId == entity.ID
			if imgui.SelectableBoolV(fmt.Sprintf("%d", entity.ID.Index()), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selectedEntityId = entity.ID
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.Generation))

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentTypes, ", "))
		}

		imgui.EndTable()
	}

	if len(filteredEntities) > eb.maxEntitiesPerPage {
		totalPages := (len(filteredEntities) + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filteredEntities)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filteredEntities)))
	}

	imgui.End()
}

// Refresh rebuilds the entity list. The selection is dropped once its entity dies.
func (eb *EntityBrowser) Refresh(storage *ecs.Storage) {
	ids := storage.Entities()
	eb.cache.entities = make([]EntityInfo, 0, len(ids))

	for _, id := range ids {
		types := storage.ComponentTypes(id)
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = t.String()
		}
		eb.cache.entities = append(eb.cache.entities, EntityInfo{
			ID:             id,
			Generation:     id.Generation(),
			ComponentTypes: names,
		})
	}

	if eb.selectedEntityId != 0 && !storage.Alive(eb.selectedEntityId) {
		eb.selectedEntityId = 0
	}

	eb.sortEntities()
}

// SortBy orders the list by column: 0 id, 1 generation, 2 components.
func (eb *EntityBrowser) SortBy(column int, ascending bool) {
	eb.cache.sortColumn = column
	eb.cache.sortAscending = ascending
	eb.sortEntities()
}

func (eb *EntityBrowser) sortEntities() {
	column := eb.cache.sortColumn
	sort.SliceStable(eb.cache.entities, func(i, j int) bool {
		a, b := eb.cache.entities[i], eb.cache.entities[j]
		if !eb.cache.sortAscending {
			a, b = b, a
		}
		return entityLess(column, a, b)
	})
}

func entityLess(column int, a, b EntityInfo) bool {
	switch column {
	case 1:
		return a.Generation < b.Generation
	case 2:
		return strings.Join(a.ComponentTypes, ",") < strings.Join(b.ComponentTypes, ",")
	default:
		return a.ID.Index() < b.ID.Index()
	}
}

// Filtered returns the entities whose index or component names contain the filter text.
func (eb *EntityBrowser) Filtered() []EntityInfo {
	if eb.filterText == "" {
		return eb.cache.entities
	}

	filtered := make([]EntityInfo, 0, len(eb.cache.entities))
	filterLower := strings.ToLower(eb.filterText)

	for _, entity := range eb.cache.entities {
		idStr := fmt.Sprintf("%d", entity.ID.Index())
		componentsStr := strings.ToLower(strings.Join(entity.ComponentTypes, " "))

		if !strings.Contains(idStr, filterLower) && !strings.Contains(componentsStr, filterLower) {
			continue
		}
		filtered = append(filtered, entity)
	}

	return filtered
}

func (eb *EntityBrowser) SetFilter(text string) {
	eb.filterText = text
	eb.currentPage = 0
}

func (eb *EntityBrowser) Select(id ecs.EntityId) {
	eb.selectedEntityId = id
}

func (eb *EntityBrowser) SelectedEntity() ecs.EntityId {
	return eb.selectedEntityId
}
