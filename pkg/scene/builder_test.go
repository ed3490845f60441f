package scene

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lucasverdier/reelforge/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func photo(sortOrder int, room string) *models.MediaItem {
	item := &models.MediaItem{
		ID:        uuid.New(),
		URL:       "https://cdn.example.com/p" + uuid.NewString() + ".jpg",
		MediaType: models.MediaTypePhoto,
		SortOrder: sortOrder,
	}
	if room != "" {
		item.RoomType = strPtr(room)
	}
	return item
}

func video(sortOrder int, durationMs int) *models.MediaItem {
	return &models.MediaItem{
		ID:         uuid.New(),
		URL:        "https://cdn.example.com/v" + uuid.NewString() + ".mp4",
		MediaType:  models.MediaTypeVideo,
		SortOrder:  sortOrder,
		DurationMs: intPtr(durationMs),
	}
}

var testFacts = Facts{
	City:     "Nice",
	District: "Cimiez",
	Price:    "450000",
	Contact:  "Eden",
	Phone:    "+33612345678",
}

func TestBuild_FacadeBecomesHookAndNeverReappears(t *testing.T) {
	facade := photo(2, models.RoomFacade)
	items := []*models.MediaItem{
		photo(1, models.RoomKitchen),
		facade,
		photo(3, models.RoomBedroom),
	}

	scenes := Build(items, testFacts, 30)

	require.NotEmpty(t, scenes)
	assert.Equal(t, TypeHook, scenes[0].Type)
	assert.Equal(t, facade.URL, scenes[0].ImageURL)
	assert.Equal(t, "Nice", scenes[0].City)
	assert.Equal(t, "450000", scenes[0].Price)

	for _, s := range scenes[1:] {
		assert.NotEqual(t, facade.URL, s.ImageURL)
		assert.NotEqual(t, TypeHook, s.Type)
	}
}

func TestBuild_HookUsesGeneratedVideoWhenPresent(t *testing.T) {
	facade := photo(0, models.RoomFacade)
	facade.GeneratedVideoURL = strPtr("https://cdn.example.com/facade-clip.mp4")

	scenes := Build([]*models.MediaItem{facade}, testFacts, 10)

	require.Equal(t, TypeHook, scenes[0].Type)
	assert.Equal(t, "https://cdn.example.com/facade-clip.mp4", scenes[0].ImageURL)
}

func TestBuild_NoFacadeMeansNoHook(t *testing.T) {
	items := []*models.MediaItem{
		photo(0, models.RoomKitchen),
		photo(1, models.RoomBedroom),
	}

	scenes := Build(items, testFacts, 30)

	require.Len(t, scenes, 3)
	assert.Equal(t, TypePhoto, scenes[0].Type)
	assert.Equal(t, items[0].URL, scenes[0].ImageURL)
}

func TestBuild_FacadeVideoIsNotHook(t *testing.T) {
	// Only a facade *photo* qualifies for the hook scene.
	facadeVideo := video(0, 5000)
	facadeVideo.RoomType = strPtr(models.RoomFacade)

	scenes := Build([]*models.MediaItem{facadeVideo}, testFacts, 10)

	require.Len(t, scenes, 2)
	assert.Equal(t, TypeVideo, scenes[0].Type)
}

func TestBuild_EndCardAlwaysLast(t *testing.T) {
	cases := [][]*models.MediaItem{
		nil,
		{photo(0, models.RoomFacade)},
		{photo(0, ""), video(1, 4000)},
	}
	for _, items := range cases {
		scenes := Build(items, testFacts, 20)
		require.NotEmpty(t, scenes)
		last := scenes[len(scenes)-1]
		assert.Equal(t, TypeEndCard, last.Type)
		assert.Equal(t, "Eden", last.Contact)
		assert.Equal(t, "+33612345678", last.Phone)
	}
}

func TestBuild_EmptyMediaYieldsEndCardOnly(t *testing.T) {
	scenes := Build(nil, testFacts, 30)
	require.Len(t, scenes, 1)
	assert.Equal(t, TypeEndCard, scenes[0].Type)
	assert.Equal(t, 3*FPS, scenes[0].DurationFrames)
}

func TestBuild_SceneKinds(t *testing.T) {
	generated := photo(1, models.RoomBedroom)
	generated.GeneratedVideoURL = strPtr("https://cdn.example.com/bedroom-clip.mp4")

	staged := photo(2, models.RoomLivingRoom)
	staged.StagedURL = strPtr("https://cdn.example.com/staged.jpg")

	clip := video(3, 12000)
	plain := photo(4, models.RoomKitchen)

	scenes := Build([]*models.MediaItem{generated, staged, clip, plain}, testFacts, 60)

	require.Len(t, scenes, 5)

	// AI clip: fixed 8s, generated URL wins over the source image.
	assert.Equal(t, TypeVideo, scenes[0].Type)
	assert.Equal(t, "https://cdn.example.com/bedroom-clip.mp4", scenes[0].VideoURL)

	assert.Equal(t, TypeStaging, scenes[1].Type)
	assert.Equal(t, staged.URL, scenes[1].BeforeURL)
	assert.Equal(t, "https://cdn.example.com/staged.jpg", scenes[1].AfterURL)

	assert.Equal(t, TypeVideo, scenes[2].Type)
	assert.Equal(t, clip.URL, scenes[2].VideoURL)

	assert.Equal(t, TypePhoto, scenes[3].Type)
	assert.Equal(t, TypeEndCard, scenes[4].Type)
}

func TestBuild_RealClipDurationCappedAtEightSeconds(t *testing.T) {
	long := video(0, 20000)
	short := video(1, 3000)

	scenes := Build([]*models.MediaItem{long, short}, testFacts, 0)

	assert.Equal(t, 8*FPS, scenes[0].DurationFrames)
	assert.Equal(t, 3*FPS, scenes[1].DurationFrames)
}

func TestBuild_AnimationsRotateRoundRobin(t *testing.T) {
	var items []*models.MediaItem
	for i := 0; i < 7; i++ {
		items = append(items, photo(i, models.RoomBedroom))
	}

	scenes := Build(items, testFacts, 60)

	var got []string
	for _, s := range scenes {
		if s.Type == TypePhoto {
			got = append(got, s.Animation)
		}
	}
	require.Len(t, got, 7)
	assert.Equal(t, got[0], got[5])
	assert.Equal(t, got[1], got[6])
	// First cycle has no repeats.
	seen := map[string]bool{}
	for _, a := range got[:5] {
		assert.False(t, seen[a], "animation %q repeated within one cycle", a)
		seen[a] = true
	}
}

func TestBuild_SortOrderIsCanonical(t *testing.T) {
	first := photo(10, models.RoomKitchen)
	second := photo(20, models.RoomBedroom)
	items := []*models.MediaItem{second, first} // stored out of order

	scenes := Build(items, testFacts, 30)

	require.Len(t, scenes, 3)
	assert.Equal(t, first.URL, scenes[0].ImageURL)
	assert.Equal(t, second.URL, scenes[1].ImageURL)
}

func TestBuild_EndToEndExample(t *testing.T) {
	// 1 facade photo, 2 interior photos, 1 interior video, 1 staged photo.
	facade := photo(0, models.RoomFacade)
	interior1 := photo(1, models.RoomLivingRoom)
	interior2 := photo(2, models.RoomKitchen)
	clip := video(3, 9000)
	staged := photo(4, models.RoomBedroom)
	staged.StagedURL = strPtr("https://cdn.example.com/staged.jpg")

	scenes := Build([]*models.MediaItem{facade, interior1, interior2, clip, staged}, testFacts, 30)

	require.Len(t, scenes, 6)
	assert.Equal(t, TypeHook, scenes[0].Type)
	assert.Equal(t, TypePhoto, scenes[1].Type)
	assert.Equal(t, TypePhoto, scenes[2].Type)
	assert.Equal(t, TypeVideo, scenes[3].Type)
	assert.Equal(t, TypeStaging, scenes[4].Type)
	assert.Equal(t, TypeEndCard, scenes[5].Type)

	// 5+4+4+8+6+3 = 30s: already on target, balancer leaves it alone.
	total := 0
	for _, s := range scenes {
		total += s.DurationFrames
	}
	assert.Equal(t, 30*FPS, total)
	assert.Equal(t, 5*FPS, scenes[0].DurationFrames)
	assert.Equal(t, 3*FPS, scenes[5].DurationFrames)
}
