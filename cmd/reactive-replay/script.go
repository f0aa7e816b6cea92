package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	reactive "github.com/xariahdailstone/xarchat-reactive"
)

// Script is a replay file.
//
//	list:
//	  sorted: true
//	  ops:
//	    - {op: push, values: [c, a, b]}
//	    - {op: remove_at, index: 1}
//	dictionary:
//	  ops:
//	    - {op: add, keys: [1, 3, 5, 4]}
//	    - {op: delete, keys: [3]}
type Script struct {
	List       *ListScript       `yaml:"list"`
	Dictionary *DictionaryScript `yaml:"dictionary"`
}

type ListScript struct {
	Sorted bool     `yaml:"sorted"`
	Ops    []ListOp `yaml:"ops"`
}

type ListOp struct {
	Op     string   `yaml:"op"`
	Index  int      `yaml:"index"`
	Values []string `yaml:"values"`
}

type DictionaryScript struct {
	Ops []DictionaryOp `yaml:"ops"`
}

type DictionaryOp struct {
	Op   string `yaml:"op"`
	Keys []int  `yaml:"keys"`
}

// LoadScript reads and decodes a YAML replay script.
func LoadScript(path string) (*Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Script
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &s, nil
}

// diffLine is one printed change.
type diffLine struct {
	Target string `json:"target"`
	Step   int    `json:"step"`
	Kind   string `json:"kind"`
	Item   any    `json:"item"`
	After  any    `json:"after"`
	Before any    `json:"before"`
}

// Replay runs the script against a fresh collection and dictionary of rc and
// writes every normalized change to w.
func Replay(rc *reactive.Context, s *Script, w io.Writer) error {
	enc := json.NewEncoder(w)
	var encErr error
	write := func(line diffLine) {
		if encErr == nil {
			encErr = enc.Encode(line)
		}
	}

	if s.List != nil {
		if err := replayList(rc, s.List, write); err != nil {
			return err
		}
	}
	if s.Dictionary != nil {
		if err := replayDictionary(rc, s.Dictionary, write); err != nil {
			return err
		}
	}

	return encErr
}

func replayList(rc *reactive.Context, s *ListScript, write func(diffLine)) error {
	list := reactive.NewCollection[string](rc)
	if s.Sorted {
		list.SetPushSort(strings.Compare)
	}

	step := 0
	sub := list.AddCollectionObserver(func(changes []reactive.Change[string]) {
		for _, c := range changes {
			write(diffLine{Target: "list", Step: step, Kind: c.Kind.String(), Item: c.Item, After: deref(c.After), Before: deref(c.Before)})
		}
	})
	defer sub.Dispose()

	for i, op := range s.Ops {
		step = i + 1
		if err := applyListOp(list, op); err != nil {
			return fmt.Errorf("list op %d (%s): %w", step, op.Op, err)
		}
	}
	return nil
}

func applyListOp(list *reactive.Collection[string], op ListOp) error {
	switch op.Op {
	case "push":
		list.Push(op.Values...)
	case "unshift":
		list.Unshift(op.Values...)
	case "pop":
		list.Pop()
	case "shift":
		list.Shift()
	case "add_at":
		return list.AddAt(op.Index, op.Values...)
	case "remove_at":
		_, err := list.RemoveAt(op.Index)
		return err
	case "set":
		if len(op.Values) != 1 {
			return fmt.Errorf("set takes exactly one value")
		}
		return list.Set(op.Index, op.Values[0])
	case "remove":
		list.RemoveWhere(func(v string) bool {
			for _, target := range op.Values {
				if v == target {
					return true
				}
			}
			return false
		})
	case "clear":
		list.Clear()
	default:
		return fmt.Errorf("unknown op")
	}
	return nil
}

func replayDictionary(rc *reactive.Context, s *DictionaryScript, write func(diffLine)) error {
	dict := reactive.NewOrderedDictionary(rc, func(v int) int { return v })

	step := 0
	sub := dict.AddCollectionObserver(func(changes []reactive.Change[int]) {
		for _, c := range changes {
			write(diffLine{Target: "dictionary", Step: step, Kind: c.Kind.String(), Item: c.Item, After: deref(c.After), Before: deref(c.Before)})
		}
	})
	defer sub.Dispose()

	for i, op := range s.Ops {
		step = i + 1
		switch op.Op {
		case "add":
			for _, k := range op.Keys {
				dict.Add(k)
			}
		case "delete":
			for _, k := range op.Keys {
				dict.Delete(k)
			}
		case "clear":
			dict.Clear()
		default:
			return fmt.Errorf("dictionary op %d (%s): unknown op", step, op.Op)
		}
	}
	return nil
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
