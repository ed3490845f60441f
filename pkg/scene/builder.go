package scene

import (
	"sort"

	"github.com/lucasverdier/reelforge/pkg/models"
)

// Facts carries the property details woven into hook and end-card scenes.
type Facts struct {
	City     string
	District string
	Price    string
	Contact  string
	Phone    string
}

// Build turns a reel's media items into an ordered, balanced scene list.
//
// Items are processed in stored sort order. A facade photo, when present,
// becomes the mandatory hook scene and never reappears later. The end card
// is always last. The list is then balanced toward targetSeconds.
func Build(items []*models.MediaItem, facts Facts, targetSeconds int) []Scene {
	sorted := make([]*models.MediaItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortOrder < sorted[j].SortOrder
	})

	var scenes []Scene

	var facade *models.MediaItem
	for _, item := range sorted {
		if item.IsFacadePhoto() {
			facade = item
			break
		}
	}

	if facade != nil {
		imageURL := facade.URL
		if facade.GeneratedVideoURL != nil && *facade.GeneratedVideoURL != "" {
			imageURL = *facade.GeneratedVideoURL
		}
		scenes = append(scenes, Scene{
			Type:           TypeHook,
			ImageURL:       imageURL,
			City:           facts.City,
			District:       facts.District,
			Price:          facts.Price,
			DurationFrames: hookFrames,
		})
	}

	animIndex := 0
	for _, item := range sorted {
		if item == facade {
			continue
		}
		switch {
		case item.MediaType == models.MediaTypeVideo || hasGeneratedVideo(item):
			scenes = append(scenes, videoScene(item))
		case item.StagedURL != nil && *item.StagedURL != "":
			scenes = append(scenes, Scene{
				Type:           TypeStaging,
				BeforeURL:      item.URL,
				AfterURL:       *item.StagedURL,
				DurationFrames: stagingFrames,
			})
		default:
			scenes = append(scenes, Scene{
				Type:           TypePhoto,
				ImageURL:       item.URL,
				Label:          description(item),
				Animation:      animations[animIndex%len(animations)],
				DurationFrames: photoFrames,
			})
			animIndex++
		}
	}

	scenes = append(scenes, Scene{
		Type:           TypeEndCard,
		Contact:        facts.Contact,
		Phone:          facts.Phone,
		DurationFrames: endCardFrames,
	})

	Balance(scenes, targetSeconds*FPS)
	return scenes
}

func videoScene(item *models.MediaItem) Scene {
	url := item.URL
	frames := maxClipFrames
	if hasGeneratedVideo(item) {
		// AI clips are produced at a fixed 8s.
		url = *item.GeneratedVideoURL
	} else if item.DurationMs != nil && *item.DurationMs > 0 {
		frames = *item.DurationMs * FPS / 1000
		if frames > maxClipFrames {
			frames = maxClipFrames
		}
	}
	return Scene{
		Type:           TypeVideo,
		VideoURL:       url,
		Label:          description(item),
		DurationFrames: frames,
	}
}

func hasGeneratedVideo(item *models.MediaItem) bool {
	return item.GeneratedVideoURL != nil && *item.GeneratedVideoURL != ""
}

func description(item *models.MediaItem) string {
	if item.AIDescription == nil {
		return ""
	}
	return *item.AIDescription
}
