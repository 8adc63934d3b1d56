package data

import "time"

// AppState is the step of the comic flow a user session is in.
type AppState string

const (
	StateUpload     AppState = "UPLOAD"
	StateConfig     AppState = "CONFIG"
	StateGenerating AppState = "GENERATING"
	StateViewing    AppState = "VIEWING"
)

// AudioStatus tracks the live director connection.
type AudioStatus string

const (
	AudioDisconnected AudioStatus = "DISCONNECTED"
	AudioConnecting   AudioStatus = "CONNECTING"
	AudioConnected    AudioStatus = "CONNECTED"
	AudioSpeaking     AudioStatus = "SPEAKING"
	AudioError        AudioStatus = "ERROR"
)

type Settings struct {
	HeroName   string `json:"heroName"`
	Superpower string `json:"superpower"`
	Villain    string `json:"villain"`
	Setting    string `json:"setting"`
	ArtStyle   string `json:"artStyle"`
}

func DefaultSettings() Settings {
	return Settings{
		HeroName:   "Captain Pixel",
		Superpower: "Can manipulate digital reality",
		Villain:    "The Glitch",
		Setting:    "Neo-Tokyo Cyberpunk City",
		ArtStyle:   "Modern American Comic",
	}
}

// Image is an encoded picture, either the uploaded selfie or a generated panel.
type Image struct {
	Data     []byte
	MIMEType string
}

func (i Image) Empty() bool {
	return len(i.Data) == 0
}

type Page struct {
	PageNumber       int    `json:"pageNumber"`
	PanelDescription string `json:"panelDescription"`
	Dialogue         string `json:"dialogue"`
	ImageURL         string `json:"imageUrl,omitempty"` // data: URL or placeholder
	IsLoading        bool   `json:"isLoading"`
}

type Story struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	HeroName  string    `json:"heroName"`
	Settings  Settings  `json:"settings"`
	Pages     []Page    `json:"pages"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a deep copy so callers can hand out snapshots safely.
func (s *Story) Clone() *Story {
	if s == nil {
		return nil
	}
	out := *s
	out.Pages = make([]Page, len(s.Pages))
	copy(out.Pages, s.Pages)
	return &out
}

// Rendered counts pages that finished loading.
func (s *Story) Rendered() int {
	n := 0
	for _, p := range s.Pages {
		if !p.IsLoading {
			n++
		}
	}
	return n
}
