package lang

import (
	"strings"
)

// block handles
//
//	block name ... endblock
//
// The enclosed parts are stored under name and nothing is emitted.
func (s *stmt) block() ([]Part, int, error) {
	name, err := s.value("name")
	if err != nil {
		return nil, 0, err
	}

	if err := s.done(); err != nil {
		return nil, 0, err
	}

	end, err := s.end("block", "endblock")
	if err != nil {
		return nil, 0, err
	}

	s.env.SetBlock(name, detachAll(s.enclosed(end), s.doc.Source()))

	return nil, end - s.index, nil
}

// call handles
//
//	call name
//
// It emits a copy of the parts of a stored block.
func (s *stmt) call() ([]Part, int, error) {
	name, err := s.value("name")
	if err != nil {
		return nil, 0, err
	}

	if err := s.done(); err != nil {
		return nil, 0, err
	}

	parts, err := s.env.Block(name)
	if err != nil {
		return nil, 0, err
	}

	return parts, 0, nil
}

// raw handles
//
//	raw ... endraw
//
// The enclosed source is emitted as verbatim text that later passes do not
// resolve.
func (s *stmt) raw() ([]Part, int, error) {
	if err := s.done(); err != nil {
		return nil, 0, err
	}

	end, err := s.end("raw", "endraw")
	if err != nil {
		return nil, 0, err
	}

	var sb strings.Builder
	for _, p := range s.enclosed(end) {
		sb.WriteString(p.Content(s.doc.Source()))
	}

	return []Part{Verbatim(sb.String())}, end - s.index, nil
}
