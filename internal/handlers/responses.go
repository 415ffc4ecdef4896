package handlers

import (
	"time"

	"github.com/guestsnap/guestsnap/internal/models"
)

// API responses expose the project's PublicID as "id"; storage row ids
// never leave the server.

type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type MediaResponse struct {
	GuestName  string    `json:"guestName"`
	Kind       string    `json:"kind"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type ProjectResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	QRCode     string          `json:"qrCode"`
	FinalVideo string          `json:"finalVideo,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	Media      []MediaResponse `json:"media"`
}

func newMediaResponse(m models.Media) MediaResponse {
	return MediaResponse{
		GuestName:  m.GuestName,
		Kind:       m.Kind,
		URL:        m.URL,
		UploadedAt: m.CreatedAt,
	}
}

func newProjectResponse(p models.Project) ProjectResponse {
	media := make([]MediaResponse, 0, len(p.Media))
	for _, m := range p.Media {
		media = append(media, newMediaResponse(m))
	}

	return ProjectResponse{
		ID:         p.PublicID,
		Name:       p.Name,
		QRCode:     p.QRCode,
		FinalVideo: p.FinalVideo,
		CreatedAt:  p.CreatedAt,
		Media:      media,
	}
}
