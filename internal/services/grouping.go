package services

import (
	"sort"

	"labstock/internal/models"
)

// groupPalette is the fixed cyclic color palette for lot groups. Colors are
// assigned over the distinct SaturnRef set in ascending order, so the same
// record set always produces the same assignment; when refs are added or
// removed, later colors shift (accepted limitation, colors are not stable
// identifiers across days).
var groupPalette = [...]string{
	"#FFD9EC", "#D9EAFF", "#D9FFE3", "#FFF3D9",
	"#EAD9FF", "#D9FFFB", "#FFE3D9", "#ECF0D9",
}

// GroupingService derives the lot-group structure of a panel: membership,
// colors, the title member of each group and the display sort order.
type GroupingService interface {
	// Annotate decorates a panel's records with group color, title flag,
	// alarm state and sort keys, returned in display order. An empty panel
	// yields an empty slice.
	Annotate(records []models.ReagentRecord, panel string) []models.AnnotatedRecord
	// GroupIndexes returns the panel indexes of every record sharing
	// saturnRef, in stored order.
	GroupIndexes(records []models.ReagentRecord, saturnRef int) []int
}

type groupingService struct {
	catalog models.PanelCatalog
}

func NewGroupingService(catalog models.PanelCatalog) GroupingService {
	return &groupingService{catalog: catalog}
}

func (s *groupingService) Annotate(records []models.ReagentRecord, panel string) []models.AnnotatedRecord {
	annotated := make([]models.AnnotatedRecord, len(records))

	// Group membership, preserving first-seen order inside each group.
	memberIdx := make(map[int][]int)
	var refs []int
	for i, rec := range records {
		if _, seen := memberIdx[rec.SaturnRef]; !seen {
			refs = append(refs, rec.SaturnRef)
		}
		memberIdx[rec.SaturnRef] = append(memberIdx[rec.SaturnRef], i)
	}

	// Colors cycle over the distinct refs sorted ascending, which makes the
	// assignment a pure function of the ref set.
	sort.Ints(refs)
	colorByRef := make(map[int]string, len(refs))
	for i, ref := range refs {
		colorByRef[ref] = groupPalette[i%len(groupPalette)]
	}

	for _, ref := range refs {
		members := memberIdx[ref]
		title := s.titleIndex(records, members, panel)
		multiSort := 1
		if len(members) > 1 {
			multiSort = 0
		}
		for _, i := range members {
			notTitle := 1
			if i == title {
				notTitle = 0
			}
			annotated[i] = models.AnnotatedRecord{
				ReagentRecord: records[i],
				Index:         i,
				ColorTag:      colorByRef[ref],
				IsTitle:       i == title,
				GroupSize:     len(members),
				Alarm:         ClassifyAlarm(records[i]),
				MultiSort:     multiSort,
				NotTitle:      notTitle,
			}
		}
	}

	// Display order: multi-member groups first, groups kept together by
	// ascending ref, title row leading each group.
	sort.SliceStable(annotated, func(i, j int) bool {
		a, b := annotated[i], annotated[j]
		if a.MultiSort != b.MultiSort {
			return a.MultiSort < b.MultiSort
		}
		if a.SaturnRef != b.SaturnRef {
			return a.SaturnRef < b.SaturnRef
		}
		return a.NotTitle < b.NotTitle
	})
	return annotated
}

// titleIndex picks the group's title member: the first member whose product
// name matches the panel catalog, else the first member in stored order.
// Every group therefore has exactly one title.
func (s *groupingService) titleIndex(records []models.ReagentRecord, members []int, panel string) int {
	for _, i := range members {
		if s.catalog.IsTitleName(panel, records[i].ProductName) {
			return i
		}
	}
	return members[0]
}

func (s *groupingService) GroupIndexes(records []models.ReagentRecord, saturnRef int) []int {
	var indexes []int
	for i, rec := range records {
		if rec.SaturnRef == saturnRef {
			indexes = append(indexes, i)
		}
	}
	return indexes
}
