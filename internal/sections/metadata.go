package sections

// Allowed values of the enumerated section fields. Renderers fall back to the
// first option when a field is empty.
var (
	HeroLayouts         = []string{"centered", "left", "right"}
	GalleryLayouts      = []string{"grid", "masonry", "carousel"}
	ScheduleLayouts     = []string{"timeline", "list"}
	AboutImagePositions = []string{"left", "right"}
	ColumnOptions       = []int{2, 3, 4}
)

const DefaultColumns = 3

// Sidebar groups.
const (
	SectionCategoryLayout = "layout"
	SectionCategoryEvent  = "event"
	SectionCategoryMedia  = "media"
)

// FirstOr returns value when it is one of options, otherwise options[0].
func FirstOr(value string, options []string) string {
	for _, option := range options {
		if option == value {
			return value
		}
	}
	if len(options) == 0 {
		return value
	}
	return options[0]
}

// ColumnsOr returns columns when it is an allowed column count, otherwise DefaultColumns.
func ColumnsOr(columns int) int {
	for _, option := range ColumnOptions {
		if option == columns {
			return columns
		}
	}
	return DefaultColumns
}
