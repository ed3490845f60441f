package render

import (
	"github.com/lucasverdier/reelforge/pkg/models"
	"github.com/lucasverdier/reelforge/pkg/scene"
)

// BuildLegacyProps fills the fixed slots of the legacy composition from a
// reel's media. The facade slot prefers a classified facade photo, then any
// photo, then whatever media comes first. The interior slot takes the first
// non-facade photo and degrades the same way.
func BuildLegacyProps(items []*models.MediaItem, facts scene.Facts, enableStaging bool) LegacyProps {
	var facadeURL, interiorURL string

	for _, item := range items {
		if item.IsFacadePhoto() {
			facadeURL = item.URL
			break
		}
	}
	if facadeURL == "" {
		for _, item := range items {
			if item.MediaType == models.MediaTypePhoto {
				facadeURL = item.URL
				break
			}
		}
	}
	if facadeURL == "" && len(items) > 0 {
		facadeURL = items[0].URL
	}

	for _, item := range items {
		if item.MediaType == models.MediaTypePhoto && !item.IsFacadePhoto() {
			interiorURL = item.URL
			break
		}
	}
	if interiorURL == "" && len(items) > 1 {
		interiorURL = items[1].URL
	}
	if interiorURL == "" {
		interiorURL = facadeURL
	}

	stagedURL := ""
	if enableStaging {
		stagedURL = interiorURL
	}

	return LegacyProps{
		FacadeURL:   facadeURL,
		InteriorURL: interiorURL,
		StagedURL:   stagedURL,
		City:        facts.City,
		District:    facts.District,
		Price:       facts.Price,
		Contact:     facts.Contact,
		Phone:       facts.Phone,
	}
}
