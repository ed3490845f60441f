package videogen

import "github.com/lucasverdier/reelforge/pkg/models"

// CostPerClip is the per-clip generation price in euros, used for estimates.
const CostPerClip = 1.20

// roomPrompts maps each room classification to the cinematic camera direction
// sent to the video backend.
var roomPrompts = map[string]string{
	models.RoomFacade:     "Smooth cinematic dolly forward toward the front entrance of this house, golden hour lighting, real estate showcase",
	models.RoomLivingRoom: "Gentle cinematic pan across this living room, warm natural light streaming in, interior design showcase",
	models.RoomKitchen:    "Slow tracking shot through this kitchen, morning light, modern real estate video style",
	models.RoomBedroom:    "Soft dolly in toward this bedroom, cozy ambient light, real estate interior tour",
	models.RoomBathroom:   "Elegant slow pan across this bathroom, clean bright lighting, luxury real estate",
	models.RoomOffice:     "Gentle crane down revealing this home office space, natural daylight, modern living",
	models.RoomTerrace:    "Cinematic aerial-style reveal of this terrace, blue sky, outdoor living showcase",
	models.RoomGarden:     "Wide establishing shot slowly pushing into this garden, sunny day, property showcase",
	models.RoomPool:       "Smooth tracking shot across this pool area, sparkling water reflections, luxury property",
	models.RoomGarage:     "Clean dolly shot into this garage space, well-lit, modern property tour",
	models.RoomEntry:      "Elegant push-in through this entryway, inviting warm light, real estate tour",
	models.RoomHallway:    "Steady tracking shot down this hallway, architectural perspective, interior showcase",
	models.RoomDiningRoom: "Gentle orbit around this dining area, warm evening light, lifestyle real estate",
	models.RoomCloset:     "Slow reveal of this walk-in closet, organized luxury, interior design",
	models.RoomOther:      "Smooth cinematic camera movement through this space, natural lighting, real estate showcase",
}

// BuildPrompt returns the generation prompt for a room, appending the room
// description when the vision stage produced one. Unknown room types fall
// back to the generic prompt.
func BuildPrompt(roomType, description string) string {
	base, ok := roomPrompts[roomType]
	if !ok {
		base = roomPrompts[models.RoomOther]
	}
	if description != "" {
		return base + ". " + description
	}
	return base
}

// EstimateCost returns the projected generation cost in euros for a batch of
// photos under the clip cap.
func EstimateCost(photoCount, maxClips int) float64 {
	if photoCount > maxClips {
		photoCount = maxClips
	}
	return float64(photoCount) * CostPerClip
}
