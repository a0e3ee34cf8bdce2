package layout

// Canonical canvas size every template is defined against.
const (
	CanvasWidth  = 1400
	CanvasHeight = 900
)

// Anchor labels: the printed field numbers on the front of the card.
const (
	AnchorSurname = "1"
	AnchorName    = "2"
	AnchorBirth   = "3"
	AnchorIssued  = "4A"
	AnchorExpires = "4B"
	AnchorNumber  = "5"
)

// AnchorLabels lists every known anchor label.
var AnchorLabels = []string{AnchorSurname, AnchorName, AnchorBirth, AnchorIssued, AnchorExpires, AnchorNumber}

// Template is one physical card layout: regions in extraction order plus
// the expected canvas position of each anchor label.
type Template struct {
	Name    string           `json:"name" yaml:"name"`
	Regions []Region         `json:"regions" yaml:"regions"`
	Anchors map[string]Point `json:"anchors" yaml:"anchors"`
}

// Region returns the named region.
func (t Template) Region(name string) (Region, bool) {
	for _, r := range t.Regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// Offset returns a copy of the template with every region moved by
// (dx, dy) and clamped to non-negative coordinates.
func (t Template) Offset(dx, dy float64) Template {
	out := Template{Name: t.Name, Anchors: t.Anchors, Regions: make([]Region, len(t.Regions))}
	for i, r := range t.Regions {
		out.Regions[i] = r.Offset(dx, dy)
	}
	return out
}

// Template names.
const (
	FrontTemplate2014 = "ru_dl_2014"
	FrontTemplate2011 = "ru_dl_2011"
	BackTemplateName  = "ru_dl_back"
)

// DefaultFrontTemplate is used when calibration cannot choose.
const DefaultFrontTemplate = FrontTemplate2014

// FrontTemplates returns the known front layouts, default first.
func FrontTemplates() []Template {
	return []Template{
		{
			Name: FrontTemplate2014,
			Regions: []Region{
				{Name: Surname, X: 480, Y: 150, Width: 860, Height: 60},
				{Name: Name, X: 480, Y: 220, Width: 860, Height: 60},
				{Name: Patronymic, X: 480, Y: 290, Width: 860, Height: 60},
				{Name: FullNameLine, X: 430, Y: 145, Width: 920, Height: 220},
				{Name: BirthDate, X: 480, Y: 360, Width: 280, Height: 50},
				{Name: LicenseNumber, X: 480, Y: 520, Width: 420, Height: 60},
				{Name: LicenseIssuedBy, X: 480, Y: 585, Width: 860, Height: 90},
				{Name: DrivingSince, X: 480, Y: 690, Width: 280, Height: 50},
			},
			Anchors: map[string]Point{
				AnchorSurname: {X: 445, Y: 180},
				AnchorName:    {X: 445, Y: 250},
				AnchorBirth:   {X: 445, Y: 385},
				AnchorIssued:  {X: 445, Y: 440},
				AnchorExpires: {X: 445, Y: 480},
				AnchorNumber:  {X: 445, Y: 550},
			},
		},
		{
			// Earlier print run: narrower label column, tighter line pitch.
			Name: FrontTemplate2011,
			Regions: []Region{
				{Name: Surname, X: 455, Y: 135, Width: 880, Height: 58},
				{Name: Name, X: 455, Y: 200, Width: 880, Height: 58},
				{Name: Patronymic, X: 455, Y: 265, Width: 880, Height: 58},
				{Name: FullNameLine, X: 410, Y: 130, Width: 940, Height: 200},
				{Name: BirthDate, X: 455, Y: 330, Width: 300, Height: 50},
				{Name: LicenseNumber, X: 455, Y: 500, Width: 440, Height: 60},
				{Name: LicenseIssuedBy, X: 455, Y: 565, Width: 880, Height: 90},
				{Name: DrivingSince, X: 455, Y: 670, Width: 300, Height: 50},
			},
			Anchors: map[string]Point{
				AnchorSurname: {X: 425, Y: 164},
				AnchorName:    {X: 425, Y: 229},
				AnchorBirth:   {X: 425, Y: 355},
				AnchorIssued:  {X: 425, Y: 410},
				AnchorExpires: {X: 425, Y: 455},
				AnchorNumber:  {X: 425, Y: 530},
			},
		},
	}
}

// BackTemplate returns the single back-side layout.
func BackTemplate() Template {
	return Template{
		Name: BackTemplateName,
		Regions: []Region{
			{Name: Categories, X: 330, Y: 140, Width: 980, Height: 100},
			{Name: SpecialMarks, X: 330, Y: 280, Width: 980, Height: 220},
			{Name: RawText, X: 80, Y: 80, Width: 1240, Height: 740},
		},
	}
}

// FindTemplate returns the template with the given name.
func FindTemplate(templates []Template, name string) (Template, bool) {
	for _, t := range templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}
