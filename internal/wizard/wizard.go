// Package wizard collects a listing interactively so it can be fed to the
// rate and predict commands without hand-writing JSON.
package wizard

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/meshcast/meshcast/internal/catalog"
	"github.com/meshcast/meshcast/internal/models"
	"github.com/meshcast/meshcast/internal/payload"
)

// Technical flags offered by the multi-select.
const (
	FlagDownloadable = "downloadable"
	FlagTextures     = "textures"
	FlagPBR          = "pbr"
	FlagRigged       = "rigged"
	FlagAnimated     = "animated"
)

// Answers holds the raw form values before conversion.
type Answers struct {
	Description string
	Tags        string
	Categories  string
	FaceCount   string
	VertexCount string
	Category    string
	AccountType string
	Followers   string
	Flags       []string
}

// RunListingWizard runs an interactive huh form and returns the listing it
// describes. Polygon use cases are taken from tables.
func RunListingWizard(in io.Reader, out io.Writer, tables *catalog.Tables) (*payload.Payload, error) {
	if tables == nil {
		tables = catalog.Default()
	}
	a := Answers{
		Category:    models.DefaultCategory,
		AccountType: string(models.AccountBasic),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Description").
				Description("What buyers see on the listing page").
				Value(&a.Description),
			huh.NewInput().
				Title("Tags").
				Description("Comma-separated search tags").
				Placeholder("chair, furniture, wood").
				Value(&a.Tags),
			huh.NewInput().
				Title("Marketplace categories").
				Description("Comma-separated, optional").
				Value(&a.Categories),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Face count").
				Placeholder("0").
				Value(&a.FaceCount).
				Validate(validateCount),
			huh.NewInput().
				Title("Vertex count").
				Placeholder("0").
				Value(&a.VertexCount).
				Validate(validateCount),
			huh.NewSelect[string]().
				Title("Target use case").
				Options(huh.NewOptions(useCases(tables)...)...).
				Value(&a.Category),
			huh.NewMultiSelect[string]().
				Title("Technical features").
				Options(
					huh.NewOption("Downloadable", FlagDownloadable),
					huh.NewOption("Textures", FlagTextures),
					huh.NewOption("PBR materials", FlagPBR),
					huh.NewOption("Rigged", FlagRigged),
					huh.NewOption("Animated", FlagAnimated),
				).
				Value(&a.Flags),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Account type").
				Options(
					huh.NewOption("basic", string(models.AccountBasic)),
					huh.NewOption("pro", string(models.AccountPro)),
					huh.NewOption("premium", string(models.AccountPremium)),
				).
				Value(&a.AccountType),
			huh.NewInput().
				Title("Author followers").
				Placeholder("0").
				Value(&a.Followers).
				Validate(validateCount),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}
	return a.Payload()
}

// Payload converts the answers into a request payload. Derived counts
// (tag_count, category_count, description_length) are filled from the
// collected text.
func (a Answers) Payload() (*payload.Payload, error) {
	p := payload.New()
	p.Description = strings.TrimSpace(a.Description)
	p.Tags = splitAndTrim(a.Tags)
	p.Categories = splitAndTrim(a.Categories)
	p.TagCount = len(p.Tags)
	p.CategoryCount = len(p.Categories)
	p.DescriptionLength = len([]rune(p.Description))

	var err error
	if p.FaceCount, err = parseCount("face count", a.FaceCount); err != nil {
		return nil, err
	}
	if p.VertexCount, err = parseCount("vertex count", a.VertexCount); err != nil {
		return nil, err
	}
	if p.AuthorFollowers, err = parseCount("author followers", a.Followers); err != nil {
		return nil, err
	}

	if c := strings.TrimSpace(a.Category); c != "" {
		p.Category = c
	}
	p.AccountType = string(models.ParseAccountType(a.AccountType))
	p.IsPremiumAuthor = p.AccountType != string(models.AccountBasic)

	for _, f := range a.Flags {
		switch f {
		case FlagDownloadable:
			p.IsDownloadable = true
		case FlagTextures:
			p.HasTextures = true
		case FlagPBR:
			p.HasPBR = true
		case FlagRigged:
			p.IsRigged = true
		case FlagAnimated:
			p.IsAnimated = true
		default:
			return nil, fmt.Errorf("unknown technical feature %q", f)
		}
	}
	return &p, nil
}

// GeneratePayloadJSON renders p as indented JSON ready for `meshcast predict`.
func GeneratePayloadJSON(p *payload.Payload) (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render payload: %w", err)
	}
	return string(data) + "\n", nil
}

func useCases(tables *catalog.Tables) []string {
	ranges := tables.PolygonRanges()
	names := make([]string, 0, len(ranges))
	for name := range ranges {
		names = append(names, name)
	}
	sort.Strings(names)
	// generic first so it is the preselected option
	for i, n := range names {
		if n == models.DefaultCategory {
			names = append([]string{n}, append(names[:i:i], names[i+1:]...)...)
			break
		}
	}
	return names
}

func validateCount(s string) error {
	_, err := parseCount("value", s)
	return err
}

func parseCount(field, s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", field)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return n, nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
