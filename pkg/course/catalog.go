package course

import (
	"fmt"
	"strings"
)

// Level is one of the four academic tracks.
type Level string

const (
	LevelL1    Level = "L1"
	LevelL2    Level = "L2"
	LevelL3    Level = "L3"
	LevelCRFPA Level = "CRFPA"
)

var levels = []Level{LevelL1, LevelL2, LevelL3, LevelCRFPA}

// Levels returns the known levels in display order.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

func (l Level) Valid() bool {
	for _, known := range levels {
		if l == known {
			return true
		}
	}
	return false
}

// ParseLevel accepts the exact level codes, case-insensitively.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown course level %q", s)
	}
	return l, nil
}

type Course struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Level Level  `json:"level"`
}

// Catalog is the static, ordered list of known courses. Order is significant:
// the resolver breaks score ties by keeping the first course encountered.
type Catalog struct {
	courses []Course
	byId    map[string]int
}

func NewCatalog(courses []Course) *Catalog {
	c := &Catalog{
		courses: make([]Course, len(courses)),
		byId:    make(map[string]int, len(courses)),
	}
	copy(c.courses, courses)
	for i, crs := range c.courses {
		if _, dup := c.byId[crs.Id]; !dup {
			c.byId[crs.Id] = i
		}
	}
	return c
}

// DefaultCatalog returns the compiled-in JurisPerform catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultCourses)
}

func (c *Catalog) All() []Course {
	out := make([]Course, len(c.courses))
	copy(out, c.courses)
	return out
}

func (c *Catalog) ByLevel(level Level) []Course {
	var out []Course
	for _, crs := range c.courses {
		if crs.Level == level {
			out = append(out, crs)
		}
	}
	return out
}

func (c *Catalog) FindById(id string) (Course, bool) {
	i, ok := c.byId[id]
	if !ok {
		return Course{}, false
	}
	return c.courses[i], true
}

// FindByName returns the first course whose name contains name
// (case-insensitive), optionally restricted to a level.
func (c *Catalog) FindByName(name string, level *Level) (Course, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, crs := range c.courses {
		if level != nil && crs.Level != *level {
			continue
		}
		if strings.Contains(strings.ToLower(crs.Name), needle) {
			return crs, true
		}
	}
	return Course{}, false
}

var defaultCourses = []Course{
	// L1
	{Id: "l1-droit-public", Name: "Introduction au droit public et droit constitutionnel", Level: LevelL1},
	{Id: "l1-droit-prive", Name: "Introduction au droit privé et droit civil des personnes et de la famille", Level: LevelL1},
	{Id: "l1-histoire-droit", Name: "Introduction historique au Droit et Histoire des institutions", Level: LevelL1},
	{Id: "l1-science-politique", Name: "Introduction à la science politique et économie politique", Level: LevelL1},
	{Id: "l1-droit-administratif", Name: "Droit administratif et institutions administratives", Level: LevelL1},
	{Id: "l1-institutions-europeennes", Name: "Institutions européennes et système juridique de l'Union européenne", Level: LevelL1},
	{Id: "l1-relations-internationales", Name: "Relations et institutions internationales", Level: LevelL1},
	{Id: "l1-organisations-juridictionnelles", Name: "Organisations juridictionnelles et règles du procès", Level: LevelL1},

	// L2
	{Id: "l2-droit-obligations", Name: "Droit des obligations", Level: LevelL2},
	{Id: "l2-droit-administratif", Name: "Droit administratif et institutions administratives", Level: LevelL2},
	{Id: "l2-droit-fiscal", Name: "Droit fiscal et finances publiques", Level: LevelL2},
	{Id: "l2-droit-penal", Name: "Droit pénal et procédure pénale", Level: LevelL2},
	{Id: "l2-systemes-juridiques", Name: "Systèmes juridiques comparés et culture juridique contemporaine", Level: LevelL2},
	{Id: "l2-droit-affaires", Name: "Droit des affaires", Level: LevelL2},

	// L3
	{Id: "l3-contrats-speciaux", Name: "Contrats spéciaux", Level: LevelL3},
	{Id: "l3-droit-biens", Name: "Droit des biens", Level: LevelL3},
	{Id: "l3-droit-travail", Name: "Droit du travail et relations collectives", Level: LevelL3},
	{Id: "l3-droit-affaires", Name: "Droit des affaires", Level: LevelL3},
	{Id: "l3-procedure-civile", Name: "Procédure civile", Level: LevelL3},
	{Id: "l3-tglf", Name: "TGLF", Level: LevelL3},
	{Id: "l3-institutions-europeennes", Name: "Institutions européennes et système juridique de l'Union européenne", Level: LevelL3},

	// CRFPA
	{Id: "crfpa-droit-obligations", Name: "Droit des obligations CRFPA", Level: LevelCRFPA},
	{Id: "crfpa-note-synthese", Name: "Note de synthèse", Level: LevelCRFPA},
	{Id: "crfpa-penal", Name: "Pénal et procédure pénale", Level: LevelCRFPA},
	{Id: "crfpa-droit-civil", Name: "Droit civil CRFPA", Level: LevelCRFPA},
	{Id: "crfpa-droit-public", Name: "Droit public et contentieux administratif", Level: LevelCRFPA},
	{Id: "crfpa-droit-international", Name: "Droit international et européen", Level: LevelCRFPA},
	{Id: "crfpa-droit-affaires", Name: "Droit des affaires", Level: LevelCRFPA},
	{Id: "crfpa-procedure-civile", Name: "Procédure civile", Level: LevelCRFPA},
	{Id: "crfpa-droit-fiscal", Name: "Droit fiscal et finances publiques", Level: LevelCRFPA},
	{Id: "crfpa-tglf", Name: "TGLF (Oral)", Level: LevelCRFPA},
}
