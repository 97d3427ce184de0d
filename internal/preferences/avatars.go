package preferences

import "wavy/pkg/models"

const unsplash = "https://images.unsplash.com/"
const crop = "?w=150&h=150&fit=crop&crop=face"

var avatars = []models.Avatar{
	{ID: "action", Name: "Action Hero", URL: unsplash + "photo-1571019613454-1cb2f99b2d8b" + crop, Category: "action"},
	{ID: "action2", Name: "Warrior", URL: unsplash + "photo-1566492031773-4f4e44671d66" + crop, Category: "action"},
	{ID: "comedy", Name: "Comedy Star", URL: unsplash + "photo-1507003211169-0a1dd7228f2d" + crop, Category: "comedy"},
	{ID: "comedy2", Name: "Joyful", URL: unsplash + "photo-1524504388940-b1c1722653e1" + crop, Category: "comedy"},
	{ID: "drama", Name: "Drama Queen", URL: unsplash + "photo-1494790108755-2616b332c7d2" + crop, Category: "drama"},
	{ID: "drama2", Name: "Elegant", URL: unsplash + "photo-1531746020798-e6953c6e8e04" + crop, Category: "drama"},
	{ID: "scifi", Name: "Sci-Fi Explorer", URL: unsplash + "photo-1535713875002-d1d0cf377fde" + crop, Category: "science fiction"},
	{ID: "scifi2", Name: "Tech Genius", URL: unsplash + "photo-1472099645785-5658abf4ff4e" + crop, Category: "science fiction"},
	{ID: "horror", Name: "Mystery Master", URL: unsplash + "photo-1506794778202-cad84cf45f1d" + crop, Category: "horror"},
	{ID: "horror2", Name: "Dark Hero", URL: unsplash + "photo-1500648767791-00dcc994a43e" + crop, Category: "horror"},
	{ID: "romance", Name: "Romantic Lead", URL: unsplash + "photo-1517841905240-472988babdf9" + crop, Category: "romance"},
	{ID: "romance2", Name: "Charming", URL: unsplash + "photo-1438761681033-6461ffad8d80" + crop, Category: "romance"},
	{ID: "adventure", Name: "Adventurer", URL: unsplash + "photo-1539571696357-5a69c17a67c6" + crop, Category: "adventure"},
	{ID: "adventure2", Name: "Explorer", URL: unsplash + "photo-1507591064344-4c6ce005b128" + crop, Category: "adventure"},
	{ID: "fantasy", Name: "Fantasy Hero", URL: unsplash + "photo-1487412720507-e7ab37603c6f" + crop, Category: "fantasy"},
	{ID: "fantasy2", Name: "Mystical", URL: unsplash + "photo-1534528741775-53994a69daeb" + crop, Category: "fantasy"},
}

// Avatars returns the selectable profile pictures
func Avatars() []models.Avatar {
	out := make([]models.Avatar, len(avatars))
	copy(out, avatars)
	return out
}

// AvatarByID looks up an avatar
func AvatarByID(id string) (models.Avatar, bool) {
	for _, a := range avatars {
		if a.ID == id {
			return a, true
		}
	}
	return models.Avatar{}, false
}

// AvatarsByCategory groups avatars by category, keeping catalogue order
func AvatarsByCategory() map[string][]models.Avatar {
	out := make(map[string][]models.Avatar)
	for _, a := range avatars {
		out[a.Category] = append(out[a.Category], a)
	}
	return out
}
