package config

import "testing"

const sampleDoc = `{
  "c": {
    "wifi_ssid_hint": "home",
    "allowed_setup_sec": 30,
    "setup_toggle_count": 8
  },
  "a": [
    {
      "name": "Kitchen Switch",
      "t": "switch",
      "initial_state": false,
      "0": {
        "binary_out": [{"gpio": 4, "value": true}]
      }
    },
    {
      "name": "Hall Lamp",
      "t": "lightbulb",
      "channels": 3,
      "pwm_channels": ["r", "g", "b"]
    }
  ]
}`

func TestLoadBasicDocument(t *testing.T) {
	rt, err := Load([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rt.General.WifiSSIDHint != "home" {
		t.Fatalf("WifiSSIDHint = %q", rt.General.WifiSSIDHint)
	}
	if rt.Registry.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", rt.Registry.Len())
	}
	sw := rt.Registry.Service(1)
	if sw == nil || sw.Type != "switch" {
		t.Fatalf("service 1 = %+v", sw)
	}
	entry, ok := sw.Action(0)
	if !ok || len(entry.Binary) != 1 || entry.Binary[0].ExtendedGPIO != 4 {
		t.Fatalf("action 0 = %+v, ok=%v", entry, ok)
	}
}

func TestLoadRejectsEmptyAccessories(t *testing.T) {
	if _, err := Load([]byte(`{"c":{},"a":[]}`)); err == nil {
		t.Fatal("expected error for empty accessories")
	}
}

func TestLoadRejectsUnknownServiceType(t *testing.T) {
	doc := `{"c":{},"a":[{"t":"not-a-real-type"}]}`
	if _, err := Load([]byte(doc)); err == nil {
		t.Fatal("expected error for unknown service type")
	}
}

func TestParseTemplateSelfAndAbsoluteRefs(t *testing.T) {
	segs := parseTemplate("temp=#I00C03 is now #I05C02", 3)
	var refs int
	for _, s := range segs {
		if s.IsRef {
			refs++
		}
	}
	if refs != 2 {
		t.Fatalf("expected 2 reference segments, got %d (%+v)", refs, segs)
	}
	if segs[1].SvcIdx != 3 || segs[1].ChIdx != 3 {
		t.Fatalf("self-ref segment = %+v, want SvcIdx=3 ChIdx=3", segs[1])
	}
}
