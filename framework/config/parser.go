package config

import (
	"encoding/json"
	"fmt"
	"regexp"

	yaml "gopkg.in/yaml.v3"
)

// parseOptions reads Options from JSON or YAML data and checks that every test ID pattern is a
// valid regular expression, so that a bad config file is reported as such rather than as a flag
// error.
func parseOptions(data []byte) (Options, error) {
	var ret Options
	if err := ParseJSONOrYAML(data, &ret); err != nil {
		return ret, err
	}
	for key, patterns := range map[string][]string{"run": ret.Run, "skip": ret.Skip} {
		for _, pattern := range patterns {
			if _, err := regexp.Compile(pattern); err != nil {
				return ret, fmt.Errorf("invalid %s pattern %q: %w", key, pattern, err)
			}
		}
	}
	if ret.DebugAll {
		ret.Debug = true
	}
	return ret, nil
}

// ParseJSONOrYAML is used in the same way as json.Unmarshal, but if the data is YAML and not
// JSON, it will convert the YAML to JSON and then parse it as JSON.
func ParseJSONOrYAML(data []byte, target interface{}) error {
	if err := json.Unmarshal(data, target); err == nil {
		return nil
	}
	var rawStructure interface{}
	if err := yaml.Unmarshal(data, &rawStructure); err != nil {
		return err
	}
	normalized, err := normalizeParsedYAMLForJSON(rawStructure)
	if err != nil {
		return err
	}
	jsonData, err := json.Marshal(normalized)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, target)
}

func normalizeParsedYAMLForJSON(data interface{}) (interface{}, error) {
	switch data := data.(type) {
	case []interface{}:
		arrayOut := make([]interface{}, 0, len(data))
		for _, v := range data {
			v1, err := normalizeParsedYAMLForJSON(v)
			if err != nil {
				return nil, err
			}
			arrayOut = append(arrayOut, v1)
		}
		return arrayOut, nil
	case map[string]interface{}:
		mapOut := make(map[string]interface{}, len(data))
		for k, v := range data {
			v1, err := normalizeParsedYAMLForJSON(v)
			if err != nil {
				return nil, err
			}
			mapOut[k] = v1
		}
		return mapOut, nil
	case map[interface{}]interface{}:
		mapOut := make(map[string]interface{}, len(data))
		for k, v := range data {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("YAML data contained a map key of type %T; only string keys are allowed", k)
			}
			v1, err := normalizeParsedYAMLForJSON(v)
			if err != nil {
				return nil, err
			}
			mapOut[key] = v1
		}
		return mapOut, nil
	default:
		return data, nil
	}
}
