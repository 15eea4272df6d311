package audio

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// TrackID names a background track
type TrackID string

// Built-in tracks
const (
	TrackZen    TrackID = "zen"
	TrackCosmos TrackID = "cosmos"
	TrackFocus  TrackID = "focus"
	TrackUpload TrackID = "upload"
)

// TrackKind tags how a track is produced
type TrackKind int

const (
	KindSynth  TrackKind = iota // Ambient drone
	KindAsset                   // Bundled or configured file
	KindUpload                  // User-chosen file
)

func (k TrackKind) String() string {
	switch k {
	case KindSynth:
		return "synth"
	case KindAsset:
		return "asset"
	case KindUpload:
		return "upload"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Track is one catalog entry
type Track struct {
	ID    TrackID
	Title string
	Kind  TrackKind
	Mood  Mood   // KindSynth only
	Path  string // KindAsset only
}

// Catalog is the ordered set of selectable tracks
type Catalog struct {
	tracks []Track
	byID   map[TrackID]int
}

// NewCatalog returns the built-in tracks plus one asset track per entry of assets (id -> path)
func NewCatalog(assets map[string]string) *Catalog {
	tracks := []Track{
		{ID: TrackZen, Title: "Zen Garden", Kind: KindSynth, Mood: MoodZen},
		{ID: TrackCosmos, Title: "Deep Cosmos", Kind: KindSynth, Mood: MoodCosmos},
		{ID: TrackFocus, Title: "Focus Flow", Kind: KindSynth, Mood: MoodFocus},
	}

	ids := make([]string, 0, len(assets))
	for id := range assets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		tid := TrackID(id)
		if tid == TrackZen || tid == TrackCosmos || tid == TrackFocus || tid == TrackUpload || assets[id] == "" {
			continue
		}
		tracks = append(tracks, Track{ID: tid, Title: id, Kind: KindAsset, Path: assets[id]})
	}
	tracks = append(tracks, Track{ID: TrackUpload, Title: "Custom File", Kind: KindUpload})

	c := &Catalog{tracks: tracks, byID: make(map[TrackID]int, len(tracks))}
	for i, t := range tracks {
		c.byID[t.ID] = i
	}
	return c
}

// Lookup returns the track for id
func (c *Catalog) Lookup(id TrackID) (Track, error) {
	i, ok := c.byID[id]
	if !ok {
		return Track{}, fmt.Errorf("%w: %q", ErrUnknownTrack, id)
	}
	return c.tracks[i], nil
}

// Tracks returns catalog entries in display order
func (c *Catalog) Tracks() []Track {
	out := make([]Track, len(c.tracks))
	copy(out, c.tracks)
	return out
}

// Next returns the track after id, wrapping; unknown ids map to the first track
func (c *Catalog) Next(id TrackID) TrackID {
	i, ok := c.byID[id]
	if !ok {
		return c.tracks[0].ID
	}
	return c.tracks[(i+1)%len(c.tracks)].ID
}

// Player is the playback surface the switcher drives
type Player interface {
	StopMusic()
	StartAmbient(Mood)
	PlayFile(path string) error
	RestartFile(path string) error
	MusicPlaying() bool
}

// Switcher keeps exactly one music family active
type Switcher struct {
	mu         sync.Mutex
	player     Player
	catalog    *Catalog
	log        *slog.Logger
	active     TrackID
	uploadPath string
	uploadName string
}

// NewSwitcher creates a switcher; nothing plays until a track is selected
func NewSwitcher(player Player, catalog *Catalog, log *slog.Logger) *Switcher {
	if catalog == nil {
		catalog = NewCatalog(nil)
	}
	return &Switcher{player: player, catalog: catalog, log: orDiscard(log)}
}

// Catalog returns the switcher's catalog
func (s *Switcher) Catalog() *Catalog { return s.catalog }

// Active returns the selected track id
func (s *Switcher) Active() TrackID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Upload returns the custom file path and display name
func (s *Switcher) Upload() (path, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploadPath, s.uploadName
}

// SetActiveTrack selects id; no-op if id is already active and playing
func (s *Switcher) SetActiveTrack(id TrackID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.active && s.player.MusicPlaying() {
		return nil
	}
	return s.play(id, false)
}

// ForcePlay restarts id from the beginning even if already playing
func (s *Switcher) ForcePlay(id TrackID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.play(id, true)
}

// SetUploadFile assigns the custom file; plays it if upload is selected
func (s *Switcher) SetUploadFile(path, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path == s.uploadPath {
		s.uploadName = name
		return nil
	}
	s.uploadPath, s.uploadName = path, name
	if s.active == TrackUpload {
		return s.play(TrackUpload, false)
	}
	return nil
}

// Stop silences music and keeps the selection
func (s *Switcher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.StopMusic()
}

// play must be called with mu held
// Playback failures are logged and left non-playing; only lookup errors return
// restart rewinds file tracks instead of resuming them
func (s *Switcher) play(id TrackID, restart bool) error {
	tr, err := s.catalog.Lookup(id)
	if err != nil {
		s.log.Warn("track lookup failed", "component", "audio", "track", string(id), "error", err)
		s.player.StopMusic()
		return err
	}

	s.player.StopMusic()
	s.active = id

	switch tr.Kind {
	case KindSynth:
		s.player.StartAmbient(tr.Mood)
	case KindAsset:
		if err := s.playFile(tr.Path, restart); err != nil {
			s.log.Warn("asset track failed", "component", "audio", "track", string(id), "error", err)
		}
	case KindUpload:
		if s.uploadPath == "" {
			s.log.Debug("upload track selected without file", "component", "audio")
			return nil
		}
		if err := s.playFile(s.uploadPath, restart); err != nil {
			s.log.Warn("custom file failed", "component", "audio", "file", s.uploadName, "error", err)
		}
	}
	return nil
}

func (s *Switcher) playFile(path string, restart bool) error {
	if restart {
		return s.player.RestartFile(path)
	}
	return s.player.PlayFile(path)
}
