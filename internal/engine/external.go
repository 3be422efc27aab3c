package engine

// External collaborator contracts. The engine only ever depends on these
// interfaces; concrete renderer, audio and oracle implementations live
// outside this package (internal/ui, internal/oracle) and are supplied by
// the host at construction time.

// Primitive is a tagged-union drawing instruction for a room's graphics,
// modeled on the layered-primitive VIEW/PIC resources of the genre this
// engine imitates: a room's picture is a small ordered list of shapes
// rather than a raster image.
type Primitive struct {
	Kind     string    `json:"kind"` // "rect" | "polygon" | "line" | "ellipse" | "path" | "star" | "dithered_fill"
	Color    EGAColor  `json:"color"`
	Points   []Point   `json:"points,omitempty"`
	Priority int       `json:"priority"` // draw/occlusion order
}

type Point struct {
	X, Y int
}

// EGAColor is one of the 16 fixed palette entries the renderer contract
// promises to support.
type EGAColor int

const (
	EGABlack EGAColor = iota
	EGABlue
	EGAGreen
	EGACyan
	EGARed
	EGAMagenta
	EGABrown
	EGALightGray
	EGADarkGray
	EGABrightBlue
	EGABrightGreen
	EGABrightCyan
	EGABrightRed
	EGABrightMagenta
	EGAYellow
	EGAWhite
)

// RoomGraphics is the full drawable description of a room, the value a
// Renderer's DrawRoom draws.
type RoomGraphics struct {
	Primitives []Primitive `json:"primitives"`
}

// SpriteCell is one frame of a VIEW-style animated sprite.
type SpriteCell struct {
	Primitives []Primitive `json:"primitives"`
	DurationMs int         `json:"duration_ms"`
}

// Sprite is a named, loopable sequence of cells (an NPC or item's on-room
// representation).
type Sprite struct {
	ID    string       `json:"id"`
	Cells []SpriteCell `json:"cells"`
	Loop  bool         `json:"loop"`
}

// Renderer is the presentation collaborator: it draws a room's
// RoomGraphics and its sprites. The engine never draws anything itself
// and holds no Renderer; a host calls one directly.
type Renderer interface {
	DrawRoom(g RoomGraphics)
	DrawSprite(s Sprite, at Point)
	Clear()
}

// AudioPreset names one of the period-accurate sound devices the audio
// sink contract is modeled on.
type AudioPreset string

const (
	AudioPCSpeaker AudioPreset = "pc_speaker"
	AudioAdLib     AudioPreset = "adlib"
	AudioMT32      AudioPreset = "mt32"
)

// AudioSink is the audio collaborator.
type AudioSink interface {
	PlaySound(soundID string)
	PlayMusic(themeID string)
	SetMusicIntensity(level float64)
	StopMusic()
	MuteTrack(track string, muted bool)
	PlayLeitmotif(motifID string)
}

// OracleReply is what the Oracle returns for one unhandled command.
type OracleReply struct {
	Text         string   `json:"text"`
	Audio        string   `json:"audio,omitempty"`
	StateChanges []Action `json:"state_changes,omitempty"`
}

// Oracle is the external-reasoning collaborator: it answers whatever
// the scripted event tables did not claim. Scripted events always run
// first and the Oracle is only ever consulted when nothing scripted
// matched; see EventArbiter.Resolve.
type Oracle interface {
	ProcessCommand(command string, snapshot SaveSnapshot) (OracleReply, error)
}

// NullRenderer, NullAudioSink and NullOracle are no-op stand-ins used by
// tests and headless runs.
type NullRenderer struct{}

func (NullRenderer) DrawRoom(RoomGraphics)      {}
func (NullRenderer) DrawSprite(Sprite, Point)   {}
func (NullRenderer) Clear()                     {}

type NullAudioSink struct{}

func (NullAudioSink) PlaySound(string)          {}
func (NullAudioSink) PlayMusic(string)          {}
func (NullAudioSink) SetMusicIntensity(float64) {}
func (NullAudioSink) StopMusic()                {}
func (NullAudioSink) MuteTrack(string, bool)    {}
func (NullAudioSink) PlayLeitmotif(string)      {}

// NullOracle reports that it could not answer, reproducing the
// "no oracle configured" offline behavior without special-casing a nil
// interface value everywhere Resolve is called.
type NullOracle struct{}

func (NullOracle) ProcessCommand(command string, _ SaveSnapshot) (OracleReply, error) {
	return OracleReply{Text: "You can't do that."}, nil
}
