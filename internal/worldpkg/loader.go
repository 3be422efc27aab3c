// Package worldpkg loads and validates the immutable world package an
// adventure is authored as: a directory of YAML files describing rooms,
// objects, items, NPCs, puzzles and the global event/achievement/ending
// tables, assembled into one engine.WorldPackage.
package worldpkg

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/DaanHessen/sci-adventure/internal/engine"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// document mirrors the top-level shape of one world-package YAML file.
// A world is split across files (manifest + rooms.yaml + objects.yaml +
// ...); each file only needs to populate the sections it owns, and
// Load merges them.
type document struct {
	ID           string                    `yaml:"id"`
	Title        string                    `yaml:"title"`
	StartRoomID  string                    `yaml:"start_room_id"`
	MaxWeight    int                       `yaml:"max_weight"`
	MaxSize      int                       `yaml:"max_size"`
	MaxItems     int                       `yaml:"max_items"`
	MaxHealth    int                       `yaml:"max_health"`
	MaxScore     int                       `yaml:"max_score"`
	Rooms        map[string]engine.Room    `yaml:"rooms"`
	Objects      map[string]engine.Object  `yaml:"objects"`
	Items        map[string]engine.Item    `yaml:"items"`
	NPCs         map[string]engine.NPC     `yaml:"npcs"`
	Puzzles      map[string]engine.Puzzle  `yaml:"puzzles"`
	GlobalEvents []engine.Event            `yaml:"global_events"`
	Achievements []engine.AchievementDef   `yaml:"achievements"`
	Endings      []engine.EndingDef        `yaml:"endings"`
	Interactions engine.InteractionMatrix  `yaml:"interactions"`
	Vocabulary   engine.Vocabulary         `yaml:"vocabulary"`
	LuaScripts   map[string]string         `yaml:"lua_scripts"`
}

// Load reads every *.yaml/*.yml file directly under dir, merges them into
// one engine.WorldPackage, computes its content digest, and validates it.
// Files are read in sorted-name order so merge conflicts (e.g. two files
// both defining room "start") resolve deterministically: the later file's
// entry replaces the earlier one. Such conflicts are not reported.
func Load(dir string) (*engine.WorldPackage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("worldpkg: read dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("worldpkg: no yaml files found in %s", dir)
	}

	w := &engine.WorldPackage{
		Rooms:   make(map[string]engine.Room),
		Objects: make(map[string]engine.Object),
		Items:   make(map[string]engine.Item),
		NPCs:    make(map[string]engine.NPC),
		Puzzles: make(map[string]engine.Puzzle),
	}

	var digestInput []byte
	var errs error

	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("worldpkg: read %s: %w", name, err))
			continue
		}
		digestInput = append(digestInput, data...)

		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("worldpkg: parse %s: %w", name, err))
			continue
		}
		mergeDocument(w, doc)
	}
	if errs != nil {
		return nil, errs
	}

	sum := sha256.Sum256(digestInput)
	w.Digest = hex.EncodeToString(sum[:])

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func mergeDocument(w *engine.WorldPackage, doc document) {
	if doc.ID != "" {
		w.ID = doc.ID
	}
	if doc.Title != "" {
		w.Title = doc.Title
	}
	if doc.StartRoomID != "" {
		w.StartRoomID = doc.StartRoomID
	}
	if doc.MaxWeight != 0 {
		w.MaxWeight = doc.MaxWeight
	}
	if doc.MaxSize != 0 {
		w.MaxSize = doc.MaxSize
	}
	if doc.MaxItems != 0 {
		w.MaxItems = doc.MaxItems
	}
	if doc.MaxHealth != 0 {
		w.MaxHealth = doc.MaxHealth
	}
	if doc.MaxScore != 0 {
		w.MaxScore = doc.MaxScore
	}
	for id, r := range doc.Rooms {
		w.Rooms[id] = r
	}
	for id, o := range doc.Objects {
		w.Objects[id] = o
	}
	for id, i := range doc.Items {
		w.Items[id] = i
	}
	for id, n := range doc.NPCs {
		w.NPCs[id] = n
	}
	for id, p := range doc.Puzzles {
		w.Puzzles[id] = p
	}
	w.GlobalEvents = append(w.GlobalEvents, doc.GlobalEvents...)
	w.Achievements = append(w.Achievements, doc.Achievements...)
	w.Endings = append(w.Endings, doc.Endings...)
	w.Interactions.UseOn = append(w.Interactions.UseOn, doc.Interactions.UseOn...)
	w.Interactions.Combinations = append(w.Interactions.Combinations, doc.Interactions.Combinations...)
	w.Interactions.Unlocks = append(w.Interactions.Unlocks, doc.Interactions.Unlocks...)
	if doc.Vocabulary.Aliases != nil {
		if w.Vocabulary.Aliases == nil {
			w.Vocabulary.Aliases = make(map[string][]string)
		}
		for k, v := range doc.Vocabulary.Aliases {
			w.Vocabulary.Aliases[k] = v
		}
	}
	if doc.Vocabulary.VerbSynonyms != nil {
		if w.Vocabulary.VerbSynonyms == nil {
			w.Vocabulary.VerbSynonyms = make(map[engine.Verb][]string)
		}
		for k, v := range doc.Vocabulary.VerbSynonyms {
			w.Vocabulary.VerbSynonyms[k] = v
		}
	}
	if doc.Vocabulary.NounAdjectives != nil {
		if w.Vocabulary.NounAdjectives == nil {
			w.Vocabulary.NounAdjectives = make(map[string][]string)
		}
		for k, v := range doc.Vocabulary.NounAdjectives {
			w.Vocabulary.NounAdjectives[k] = v
		}
	}
	if doc.LuaScripts != nil {
		if w.LuaScripts == nil {
			w.LuaScripts = make(map[string]string)
		}
		for k, v := range doc.LuaScripts {
			w.LuaScripts[k] = v
		}
	}
}
