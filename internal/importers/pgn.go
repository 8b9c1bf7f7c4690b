package importers

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mrlokans/linebook/internal/entities"
)

var (
	ErrInvalidPGN = errors.New("invalid pgn")
	ErrNoGames    = errors.New("pgn contains no games")
)

// Game is one parsed PGN game. The root node stands for the starting
// position; its Comment holds any text written before the first move.
type Game struct {
	Tags map[string]string
	Root *entities.Node
}

var (
	commandPattern = regexp.MustCompile(`\[%(\w+)\s*([^\]]*)\]`)
	numberPattern  = regexp.MustCompile(`^\d+\.*`)
)

// Longer suffixes first so "!!" is not read as two "!".
var suffixNags = []struct {
	suffix string
	nag    int
}{
	{"!!", 3}, {"??", 4}, {"!?", 5}, {"?!", 6}, {"!", 1}, {"?", 2},
}

// ParsePGN parses every game in text. Move text is taken as written; moves
// are not checked for legality. Repeated moves at the same point of a game
// are merged into one node.
func ParsePGN(text string) ([]Game, error) {
	p := &parser{src: text}
	games, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidPGN, p.line(), err)
	}
	return games, nil
}

type parser struct {
	src   string
	pos   int
	games []Game
	game  *gameBuilder
}

func (p *parser) line() int {
	end := min(p.pos, len(p.src))
	return strings.Count(p.src[:end], "\n") + 1
}

func (p *parser) parse() ([]Game, error) {
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			break
		}

		var err error
		switch c := p.src[p.pos]; {
		case c == '%' && (p.pos == 0 || p.src[p.pos-1] == '\n'):
			p.restOfLine()
		case c == ';':
			p.current().comment(p.restOfLine())
		case c == '[':
			err = p.tag()
		case c == '{':
			err = p.braceComment()
		case c == '(':
			p.pos++
			err = p.current().open()
		case c == ')':
			p.pos++
			err = p.current().close()
		case c == '$':
			err = p.nag()
		default:
			err = p.token()
		}
		if err != nil {
			return nil, err
		}
	}

	if g := p.game; g != nil && (g.started || len(g.tags) > 0 || g.root.Comment != "") {
		if err := p.endGame(); err != nil {
			return nil, err
		}
	}
	return p.games, nil
}

func (p *parser) current() *gameBuilder {
	if p.game == nil {
		p.game = newGameBuilder()
	}
	return p.game
}

func (p *parser) endGame() error {
	g := p.game
	p.game = nil
	if g == nil {
		return nil
	}
	if len(g.stack) > 0 {
		return errors.New("unclosed variation")
	}
	p.games = append(p.games, Game{Tags: g.tags, Root: g.root})
	return nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) restOfLine() string {
	start := p.pos + 1
	end := strings.IndexByte(p.src[p.pos:], '\n')
	if end < 0 {
		p.pos = len(p.src)
	} else {
		p.pos += end + 1
	}
	if start > p.pos {
		return ""
	}
	return strings.TrimSpace(p.src[start:p.pos])
}

// tag reads [Name "value"]. A tag after move text starts a new game.
func (p *parser) tag() error {
	if p.game != nil && p.game.started {
		if err := p.endGame(); err != nil {
			return err
		}
	}
	g := p.current()

	i := p.pos + 1
	for i < len(p.src) && isSpace(p.src[i]) {
		i++
	}
	nameStart := i
	for i < len(p.src) && !isSpace(p.src[i]) && p.src[i] != '"' && p.src[i] != ']' {
		i++
	}
	name := p.src[nameStart:i]
	for i < len(p.src) && isSpace(p.src[i]) {
		i++
	}
	if name == "" || i >= len(p.src) || p.src[i] != '"' {
		return errors.New("malformed tag")
	}

	var value strings.Builder
	i++
	for ; i < len(p.src) && p.src[i] != '"'; i++ {
		if p.src[i] == '\\' && i+1 < len(p.src) {
			i++
		}
		value.WriteByte(p.src[i])
	}
	if i >= len(p.src) {
		return errors.New("unterminated tag value")
	}
	i++
	for i < len(p.src) && isSpace(p.src[i]) {
		i++
	}
	if i >= len(p.src) || p.src[i] != ']' {
		return errors.New("unterminated tag")
	}

	g.tags[name] = value.String()
	p.pos = i + 1
	return nil
}

func (p *parser) braceComment() error {
	end := strings.IndexByte(p.src[p.pos:], '}')
	if end < 0 {
		return errors.New("unterminated comment")
	}
	text := p.src[p.pos+1 : p.pos+end]
	p.pos += end + 1
	p.current().comment(text)
	return nil
}

func (p *parser) nag() error {
	start := p.pos + 1
	i := start
	for i < len(p.src) && p.src[i] >= '0' && p.src[i] <= '9' {
		i++
	}
	p.pos = i
	n, err := strconv.Atoi(p.src[start:i])
	if err != nil {
		return errors.New("malformed NAG")
	}
	return p.current().addNags([]int{n})
}

func (p *parser) token() error {
	start := p.pos
	for p.pos < len(p.src) && !isDelimiter(p.src[p.pos]) {
		p.pos++
	}
	tok := p.src[start:p.pos]

	switch tok {
	case "1-0", "0-1", "1/2-1/2", "*":
		return p.endGame()
	}
	if strings.HasPrefix(tok, "0-0") {
		tok = strings.ReplaceAll(tok, "0", "O")
	}
	tok = numberPattern.ReplaceAllString(tok, "")
	if tok == "" {
		return nil
	}

	san, nags := splitSuffix(tok)
	g := p.current()
	if san == "" {
		return g.addNags(nags)
	}
	g.move(san, nags)
	return nil
}

func splitSuffix(tok string) (string, []int) {
	var nags []int
	for {
		matched := false
		for _, s := range suffixNags {
			if strings.HasSuffix(tok, s.suffix) {
				tok = strings.TrimSuffix(tok, s.suffix)
				nags = append([]int{s.nag}, nags...)
				matched = true
				break
			}
		}
		if !matched {
			return tok, nags
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDelimiter(c byte) bool {
	switch c {
	case '{', '}', '(', ')', '[', ']', ';', '$':
		return true
	}
	return isSpace(c)
}

// gameBuilder grows the move tree of one game.
type gameBuilder struct {
	tags    map[string]string
	root    *entities.Node
	cur     *entities.Node
	parents map[*entities.Node]*entities.Node
	stack   []*entities.Node

	// fresh is set between "(" and the first move of the variation.
	// Comments read then belong to that move, not to cur.
	fresh   bool
	pending []string
	started bool
}

func newGameBuilder() *gameBuilder {
	root := &entities.Node{}
	return &gameBuilder{
		tags:    make(map[string]string),
		root:    root,
		cur:     root,
		parents: make(map[*entities.Node]*entities.Node),
	}
}

func (g *gameBuilder) move(san string, nags []int) {
	g.started = true
	child := g.cur.Child(san)
	if child == nil {
		child = &entities.Node{Move: san}
		g.cur.Children = append(g.cur.Children, child)
		g.parents[child] = g.cur
	}
	child.Nags = mergeNags(child.Nags, nags)
	g.cur = child

	g.fresh = false
	for _, c := range g.pending {
		applyComment(child, c)
	}
	g.pending = nil
}

// open starts a variation: an alternative to the last move played.
func (g *gameBuilder) open() error {
	parent, ok := g.parents[g.cur]
	if !ok || g.fresh {
		return errors.New("variation without a preceding move")
	}
	g.started = true
	g.stack = append(g.stack, g.cur)
	g.cur = parent
	g.fresh = true
	return nil
}

func (g *gameBuilder) close() error {
	if len(g.stack) == 0 {
		return errors.New("unbalanced )")
	}
	g.cur = g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
	g.fresh = false
	g.pending = nil
	return nil
}

func (g *gameBuilder) addNags(nags []int) error {
	if g.fresh || g.cur == g.root {
		return errors.New("NAG before any move")
	}
	g.cur.Nags = mergeNags(g.cur.Nags, nags)
	return nil
}

func (g *gameBuilder) comment(text string) {
	if g.fresh {
		g.pending = append(g.pending, text)
		return
	}
	applyComment(g.cur, text)
}

// applyComment adds the text of a PGN comment to n. [%csl] and [%cal]
// commands become annotations; other commands are dropped.
func applyComment(n *entities.Node, raw string) {
	text := commandPattern.ReplaceAllStringFunc(raw, func(cmd string) string {
		m := commandPattern.FindStringSubmatch(cmd)
		values := splitValues(m[2])
		if len(values) == 0 {
			return " "
		}
		switch m[1] {
		case "csl":
			annotations(n).Squares = append(annotations(n).Squares, values...)
		case "cal":
			annotations(n).Arrows = append(annotations(n).Arrows, values...)
		}
		return " "
	})

	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return
	}
	if n.Comment != "" {
		n.Comment += " "
	}
	n.Comment += text
}

func annotations(n *entities.Node) *entities.Annotations {
	if n.Annotations == nil {
		n.Annotations = &entities.Annotations{}
	}
	return n.Annotations
}

func splitValues(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func mergeNags(have, add []int) []int {
	for _, n := range add {
		dup := false
		for _, h := range have {
			if h == n {
				dup = true
				break
			}
		}
		if !dup {
			have = append(have, n)
		}
	}
	return have
}
