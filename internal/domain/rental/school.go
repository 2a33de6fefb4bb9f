package rental

// AllSchools es el selector comodín: incluye todos los registros.
const AllSchools = "All Schools"

// schools valores del selector en el orden en que los muestra el dashboard.
var schools = []string{
	AllSchools,
	"Brown",
	"Columbia",
	"Cornell",
	"Dartmouth",
	"Harvard",
	"Princeton",
	"UPenn",
	"Yale",
}

// Schools devuelve una copia de los valores admitidos por el selector de escuela.
func Schools() []string {
	out := make([]string, len(schools))
	copy(out, schools)
	return out
}

// IsKnownSchool indica si el selector pertenece al conjunto enumerado.
// Un selector desconocido no es un error: simplemente no coincide con ningún registro.
func IsKnownSchool(selector string) bool {
	for _, s := range schools {
		if s == selector {
			return true
		}
	}
	return false
}
