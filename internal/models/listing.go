package models

// AccountType is the marketplace subscription tier of a listing's author.
type AccountType string

const (
	AccountBasic   AccountType = "basic"
	AccountPro     AccountType = "pro"
	AccountPremium AccountType = "premium"
)

// DefaultCategory is the use-case category assumed when a listing names none.
const DefaultCategory = "generic"

// ParseAccountType maps an account string to a known tier. Matching is
// exact; anything else, including "Pro", is treated as basic.
func ParseAccountType(s string) AccountType {
	switch AccountType(s) {
	case AccountPremium:
		return AccountPremium
	case AccountPro:
		return AccountPro
	default:
		return AccountBasic
	}
}

// ListingFeatures describes a single listing as seen by the quality rater.
type ListingFeatures struct {
	Description     string      `json:"description" mapstructure:"description"`
	Tags            []string    `json:"tags" mapstructure:"tags"`
	FaceCount       int         `json:"face_count" mapstructure:"face_count"`
	Category        string      `json:"category" mapstructure:"category"`
	AccountType     AccountType `json:"account_type" mapstructure:"account_type"`
	AuthorFollowers int         `json:"author_followers" mapstructure:"author_followers"`
	IsDownloadable  bool        `json:"is_downloadable" mapstructure:"is_downloadable"`
	HasTextures     bool        `json:"has_textures" mapstructure:"has_textures"`
	HasPBR          bool        `json:"has_pbr" mapstructure:"has_pbr"`
	IsRigged        bool        `json:"is_rigged" mapstructure:"is_rigged"`
	IsAnimated      bool        `json:"is_animated" mapstructure:"is_animated"`
}

// NewListingFeatures returns a ListingFeatures with every default applied.
func NewListingFeatures() ListingFeatures {
	return ListingFeatures{
		Category:    DefaultCategory,
		AccountType: AccountBasic,
	}
}

// Normalize fills empty fields with their defaults.
func (l ListingFeatures) Normalize() ListingFeatures {
	if l.Category == "" {
		l.Category = DefaultCategory
	}
	l.AccountType = ParseAccountType(string(l.AccountType))
	return l
}
