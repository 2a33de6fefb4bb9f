package rental

import "github.com/jhoicas/greenbox-dashboard/internal/domain/entity"

// Matches es el único predicado de filtrado que comparten los tres agregadores.
func Matches(r entity.CustomerRecord, selector string) bool {
	return selector == AllSchools || r.School == selector
}
