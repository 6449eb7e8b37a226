package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"hydrovox/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	reject := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err == nil {
			t.Fatalf("expected validation error")
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	actSchema := compile("act.schema.json")
	frameSchema := compile("frame.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "observer_name":"viewer1",
	  "capabilities":{"max_queue":8,"max_cells":4096}
	}`), &hello)
	validate(helloSchema, hello)

	var badHello any
	_ = json.Unmarshal([]byte(`{"type":"HELLO","protocol_version":"1.0"}`), &badHello)
	reject(helloSchema, badHello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "session_id":"O0001",
	  "world_id":"world_1",
	  "tick":1200,
	  "world_params":{"tick_rate_hz":20,"chunk_size":16,"height":64,"seed":1337},
	  "catalogs":{
	    "block_palette":{"digest":"deadbeef","count":7},
	    "defs_digest":"deadbeef"
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var act any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "action":"SET_BLOCK",
	  "pos":[10,5,-3],
	  "block":"WATER"
	}`), &act)
	validate(actSchema, act)

	var badAct any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT","protocol_version":"1.0","action":"DIG","pos":[0,0,0],"block":"WATER"
	}`), &badAct)
	reject(actSchema, badAct)

	var frame any
	_ = json.Unmarshal([]byte(`{
	  "type":"FRAME",
	  "protocol_version":"1.0",
	  "tick":1201,
	  "steps":1,
	  "processed":12,
	  "discarded":0,
	  "tracked":40,
	  "pending":6,
	  "cells":[
	    {"pos":[10,5,-3],"level":0,"source":true},
	    {"pos":[10,4,-3],"level":1,"falling":true}
	  ],
	  "drops":[{"id":"D000001","pos":[11,5,-3],"item":"REED"}]
	}`), &frame)
	validate(frameSchema, frame)
}

func TestSchemas_RoundTripGeneratedMessages(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		s, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", name))
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	check := func(s *jsonschema.Schema, msg any) {
		t.Helper()
		b, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if err := s.Validate(v); err != nil {
			t.Fatalf("generated message fails own schema: %v\n%s", err, b)
		}
	}

	check(compile("welcome.schema.json"), protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       "O0001",
		WorldID:         "w",
		WorldParams:     protocol.WorldParams{TickRateHz: 20, ChunkSize: 16, Height: 64, Seed: 7},
		Catalogs: protocol.CatalogDigests{
			BlockPalette: protocol.DigestRef{Digest: "d", Count: 7},
			DefsDigest:   "d",
		},
	})

	check(compile("frame.schema.json"), protocol.FrameMsg{
		Type:            protocol.TypeFrame,
		ProtocolVersion: protocol.Version,
		Tick:            9,
		Tracked:         1,
		Pending:         1,
		Cells:           []protocol.CellWire{{Pos: [3]int{0, 1, 2}, Level: 3, Falling: true}},
	})
}
