/*
NAME
  types.go

DESCRIPTION
  types.go models the `<input>.json` metadata document: video
  parameters shared across the whole capture, plus one entry per field.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

// Package metadata loads and validates the JSON metadata document that
// accompanies a raw TBC sample file.
package metadata

// VideoParameters describes the capture-wide geometry and reference
// levels.
type VideoParameters struct {
	NumberOfSequentialFields int  `json:"numberOfSequentialFields"`
	IsSourcePal              bool `json:"isSourcePal"`

	ColourBurstStart int `json:"colourBurstStart"`
	ColourBurstEnd   int `json:"colourBurstEnd"`
	ActiveVideoStart int `json:"activeVideoStart"`
	ActiveVideoEnd   int `json:"activeVideoEnd"`

	White16bIre uint16 `json:"white16bIre"`
	Black16bIre uint16 `json:"black16bIre"`

	FieldWidth  int     `json:"fieldWidth"`
	FieldHeight int     `json:"fieldHeight"`
	SampleRate  float64 `json:"sampleRate"`
	Fsc         float64 `json:"fsc"`
	IsMapped    bool    `json:"isMapped"`
}

// DropOut is one corrupted interval on a line.
type DropOut struct {
	FieldLine int `json:"fieldLine"`
	StartX    int `json:"startx"`
	EndX      int `json:"endx"`
	Location  int `json:"location"` // 0=visibleLine, 1=colourBurst, 2=unknown.
}

// Field is one metadata entry, one per physical field in the capture.
type Field struct {
	SeqNo          int                    `json:"seqNo"`
	IsFirstField   bool                   `json:"isFirstField"`
	SyncConf       float64                `json:"syncConf"`
	MedianBurstIRE float64                `json:"medianBurstIRE"`
	FieldPhaseID   int                    `json:"fieldPhaseID"`
	AudioSamples   int                    `json:"audioSamples"`
	Pad            int                    `json:"pad"`
	VBI            map[string]interface{} `json:"vbi,omitempty"`
	NTSC           map[string]interface{} `json:"ntsc,omitempty"`
	DropOuts       []DropOut              `json:"dropOuts,omitempty"`
	VITSMetrics    map[string]interface{} `json:"vitsMetrics,omitempty"`
}

// PCMAudioParameters is carried through but never interpreted by the
// core decoder.
type PCMAudioParameters map[string]interface{}

// Metadata is the top-level `<input>.json` document.
type Metadata struct {
	VideoParameters    VideoParameters    `json:"videoParameters"`
	Fields             []Field            `json:"fields"`
	PCMAudioParameters PCMAudioParameters `json:"pcmAudioParameters,omitempty"`
}
