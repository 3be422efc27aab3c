package engine

import "strings"

// Command is a fully resolved player instruction: a canonical verb plus
// zero, one or two resolved nouns. Parse produces these; Dispatch
// consumes them.
type Command struct {
	RawInput string

	Verb Verb

	DirectObject     string
	DirectObjectKind NounKind

	IndirectObject     string
	IndirectObjectKind NounKind

	Preposition string
	Direction   Direction
}

// Parser turns raw input lines into Commands against one WorldPackage and
// the Overlay's current room/inventory/pronoun state. It is stateless
// aside from the vocabulary table, which is built once per world package.
type Parser struct {
	vocab *vocab
}

func NewParser(w *WorldPackage) *Parser {
	return &Parser{vocab: buildVocabulary(w)}
}

// Parse resolves a raw input line into a Command. Resolution order for
// nouns: special tokens ("all", "it"), pronouns, directions, inventory,
// worn items, open container contents, then room objects/items/NPCs.
func (p *Parser) Parse(input string, o *Overlay) (Command, error) {
	raw := strings.TrimSpace(input)
	tokens := tokenize(raw)
	if len(tokens) == 0 {
		return Command{}, &ParseError{Kind: ParseMissingTarget, Input: raw}
	}
	if len(tokens) == 1 {
		tokens = p.expandAliases(tokens)
	}

	verb, rest, ok := p.matchVerb(tokens)
	if !ok {
		return Command{}, &ParseError{Kind: ParseUnknownVerb, Input: raw}
	}

	cmd := Command{RawInput: raw, Verb: verb}

	if verb == VerbGo && len(rest) == 1 {
		if dir, ok := p.vocab.directionOf[rest[0]]; ok {
			cmd.Direction = dir
			cmd.DirectObjectKind = KindDirection
			cmd.DirectObject = string(dir)
			return cmd, nil
		}
	}
	if len(rest) == 0 {
		return cmd, nil
	}

	directWords, prep, indirectWords := splitOnPreposition(rest, p.vocab)

	direct := stripArticles(directWords)
	indirect := stripArticles(indirectWords)

	if len(direct) > 0 {
		id, kind, err := p.resolveNoun(strings.Join(direct, " "), o, true)
		if err != nil {
			return Command{}, err
		}
		cmd.DirectObject = id
		cmd.DirectObjectKind = kind
	} else if requiresDirectObject(verb) {
		return Command{}, &ParseError{Kind: ParseMissingTarget, Input: string(verb)}
	}

	if prep != "" {
		cmd.Preposition = prep
		if len(indirect) > 0 {
			id, kind, err := p.resolveNoun(strings.Join(indirect, " "), o, false)
			if err != nil {
				return Command{}, err
			}
			cmd.IndirectObject = id
			cmd.IndirectObjectKind = kind
		}
	}

	if dir, ok := p.vocab.directionOf[cmd.DirectObject]; ok && verb == VerbGo {
		cmd.Direction = dir
	}

	return cmd, nil
}

func requiresDirectObject(v Verb) bool {
	switch v {
	case VerbLook, VerbInventory, VerbHelp, VerbScore, VerbWait, VerbSave, VerbLoad, VerbRestart, VerbQuit, VerbGo:
		return false
	default:
		return true
	}
}

func tokenize(input string) []string {
	fields := strings.Fields(strings.ToLower(input))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// expandAliases replaces a single-token input with its multi-token
// expansion, if one is registered: the built-in directional aliases
// ("n" -> "go north") plus any world-authored shorthand. Only called when
// the whole input is one token, so it never rewrites a word buried inside
// a longer command.
func (p *Parser) expandAliases(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if expansion, ok := p.vocab.aliases[t]; ok {
			out = append(out, expansion...)
		} else {
			out = append(out, t)
		}
	}
	return out
}

// matchVerb greedily matches the longest known verb phrase (up to
// vocab.maxVerbWords tokens) at the start of tokens.
func (p *Parser) matchVerb(tokens []string) (Verb, []string, bool) {
	max := p.vocab.maxVerbWords
	if max > len(tokens) {
		max = len(tokens)
	}
	for n := max; n >= 1; n-- {
		phrase := strings.Join(tokens[:n], " ")
		if verb, ok := p.vocab.verbOf[phrase]; ok {
			return verb, tokens[n:], true
		}
	}
	return "", nil, false
}

// splitOnPreposition finds the first recognized preposition token in rest
// and splits around it. If none is found, everything is the direct-object
// phrase.
func splitOnPreposition(rest []string, v *vocab) (direct []string, prep string, indirect []string) {
	for i, t := range rest {
		if canon, ok := v.prepositions[t]; ok {
			return rest[:i], canon, rest[i+1:]
		}
	}
	return rest, "", nil
}

func stripArticles(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !isArticle(t) {
			out = append(out, t)
		}
	}
	return out
}

// resolveNoun implements the priority-ordered noun resolution: special
// tokens, pronouns, directions, inventory, worn items, container
// contents, then room objects/items/NPCs. isDirect gates whether a
// resolved non-special noun updates pronoun memory: only the direct
// object of a command does ("put key in box" leaves "it" pointing at
// the key, not the box).
func (p *Parser) resolveNoun(phrase string, o *Overlay, isDirect bool) (string, NounKind, error) {
	switch phrase {
	case "all", "everything":
		return "all", KindSpecial, nil
	case "it":
		if o.PronounItemID != "" {
			return o.PronounItemID, KindItem, nil
		}
		return "", KindUnknown, &ParseError{Kind: ParseNotHere, Input: phrase}
	case "him", "her", "them":
		if o.PronounNPCID != "" {
			return o.PronounNPCID, KindNPC, nil
		}
		return "", KindUnknown, &ParseError{Kind: ParseNotHere, Input: phrase}
	}
	if dir, ok := p.vocab.directionOf[phrase]; ok {
		return string(dir), KindDirection, nil
	}

	var matches []string
	var matchKind NounKind

	for _, ci := range o.Inventory {
		if nounMatches(phrase, o.World.Items[ci.ItemID].Name, ci.ItemID) {
			matches = append(matches, ci.ItemID)
			matchKind = KindItem
		}
	}
	if len(matches) == 1 {
		if isDirect {
			o.PronounItemID = matches[0]
		}
		return matches[0], matchKind, nil
	}
	if len(matches) > 1 {
		return "", KindUnknown, &ParseError{Kind: ParseAmbiguous, Input: phrase, Candidates: matches}
	}

	for _, itemID := range o.WornSlots {
		if nounMatches(phrase, o.World.Items[itemID].Name, itemID) {
			matches = append(matches, itemID)
			matchKind = KindItem
		}
	}
	if len(matches) == 1 {
		if isDirect {
			o.PronounItemID = matches[0]
		}
		return matches[0], matchKind, nil
	}
	if len(matches) > 1 {
		return "", KindUnknown, &ParseError{Kind: ParseAmbiguous, Input: phrase, Candidates: matches}
	}

	for containerID, contents := range o.Containers {
		if !p.containerVisible(containerID, o) {
			continue
		}
		for _, ci := range contents {
			if nounMatches(phrase, o.World.Items[ci.ItemID].Name, ci.ItemID) {
				matches = append(matches, ci.ItemID)
				matchKind = KindItem
			}
		}
	}
	if len(matches) == 1 {
		if isDirect {
			o.PronounItemID = matches[0]
		}
		return matches[0], matchKind, nil
	}
	if len(matches) > 1 {
		return "", KindUnknown, &ParseError{Kind: ParseAmbiguous, Input: phrase, Candidates: matches}
	}

	room, ok := o.World.RoomByID(o.CurrentRoomID)
	if !ok {
		return "", KindUnknown, &ParseError{Kind: ParseNotHere, Input: phrase}
	}
	for _, oid := range room.ObjectIDs {
		obj := o.World.Objects[oid]
		if obj.Hidden {
			continue
		}
		if nounMatches(phrase, obj.Name, oid) {
			matches = append(matches, oid)
			matchKind = KindObject
		}
	}
	for _, iid := range room.ItemIDs {
		if nounMatches(phrase, o.World.Items[iid].Name, iid) {
			matches = append(matches, iid)
			matchKind = KindItem
		}
	}
	for _, nid := range room.NPCIDs {
		npc := o.World.NPCs[nid]
		if nounMatches(phrase, npc.Name, nid) {
			matches = append(matches, nid)
			matchKind = KindNPC
		}
	}

	switch len(matches) {
	case 0:
		return phrase, KindString, nil
	case 1:
		if isDirect {
			if matchKind == KindNPC {
				o.PronounNPCID = matches[0]
			} else {
				o.PronounItemID = matches[0]
			}
		}
		return matches[0], matchKind, nil
	default:
		return "", KindUnknown, &ParseError{Kind: ParseAmbiguous, Input: phrase, Candidates: matches}
	}
}

func (p *Parser) containerVisible(containerID string, o *Overlay) bool {
	if !o.IsOpen(containerID) {
		return false
	}
	if it, ok := o.World.Items[containerID]; ok && it.Container {
		return o.HasItem(containerID)
	}
	if obj, ok := o.World.Objects[containerID]; ok && obj.Container {
		room, _ := o.World.RoomByID(o.CurrentRoomID)
		for _, oid := range room.ObjectIDs {
			if oid == containerID {
				return true
			}
		}
	}
	return false
}

func nounMatches(phrase, name, id string) bool {
	phrase = strings.ToLower(phrase)
	if phrase == strings.ToLower(id) {
		return true
	}
	name = strings.ToLower(name)
	if phrase == name {
		return true
	}
	words := strings.Fields(name)
	if len(words) > 0 && phrase == words[len(words)-1] {
		return true
	}
	return false
}
