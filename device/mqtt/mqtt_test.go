package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/ledstream/core/ledmap"
)

func TestFramePayloadRGB(t *testing.T) {
	d := New("tcp://broker:1883", []Lamp{{Name: "lamp1", ColorModel: ModelRGB}}, 0, 0, nil)
	payload, err := d.framePayload(d.lamps[0], ledmap.ColorRGB{R: 10, G: 20, B: 30})
	if err != nil {
		t.Fatal(err)
	}
	var row map[string]interface{}
	if err := json.Unmarshal(payload, &row); err != nil {
		t.Fatal(err)
	}
	color, ok := row["color"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing color object in %s", payload)
	}
	if int(color["r"].(float64)) != 10 || int(color["g"].(float64)) != 20 || int(color["b"].(float64)) != 30 {
		t.Fatalf("color = %v, want r=10 g=20 b=30", color)
	}
}

func TestFramePayloadConstantBrightness(t *testing.T) {
	d := New("tcp://broker:1883", []Lamp{{Name: "lamp1", ColorModel: ModelRGB}}, 0, 200, nil)
	payload, err := d.framePayload(d.lamps[0], ledmap.ColorRGB{R: 255, G: 0, B: 0})
	if err != nil {
		t.Fatal(err)
	}
	var row map[string]interface{}
	json.Unmarshal(payload, &row)
	if int(row["brightness"].(float64)) != 200 {
		t.Fatalf("brightness = %v, want 200 (constant override)", row["brightness"])
	}
}
