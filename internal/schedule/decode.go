package schedule

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"schedrecur/internal/model"
)

// document mirrors the archive day file. data is kept as a raw node so the
// channel order of the file survives decoding.
type document struct {
	Data yaml.Node `yaml:"data"`
}

type channelBody struct {
	Programmes []model.ProgramEntry `yaml:"programmes"`
}

// Decode parses one archive day file:
//
//	data:
//	  <channel-id>:
//	    programmes:
//	      - series: ...
//	        title: ...
//	        start_time: 2024-01-01T20:30:00+02:00
//
// A missing or empty data mapping yields a day without channels.
func Decode(body []byte) (model.ScheduleDay, error) {
	var day model.ScheduleDay

	var doc document
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return day, fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
	}

	data := &doc.Data
	if data.Kind == 0 {
		return day, nil
	}
	if data.Kind == yaml.ScalarNode && data.ShortTag() == "!!null" {
		return day, nil
	}
	if data.Kind != yaml.MappingNode {
		return day, fmt.Errorf("%w: data must be a mapping of channels (line %d)", model.ErrMalformedInput, data.Line)
	}

	// Mapping content alternates key, value.
	for i := 0; i+1 < len(data.Content); i += 2 {
		keyNode, valNode := data.Content[i], data.Content[i+1]

		var body channelBody
		if err := valNode.Decode(&body); err != nil {
			return day, fmt.Errorf("%w: channel %q: %v", model.ErrMalformedInput, keyNode.Value, err)
		}
		day.Channels = append(day.Channels, model.Channel{
			ID:         keyNode.Value,
			Programmes: body.Programmes,
		})
	}
	return day, nil
}
