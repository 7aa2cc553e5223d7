package translate

import (
	"errors"
	"fmt"
	"os"

	"github.com/willf/bitset"
	"gopkg.in/yaml.v2"

	"craftbridge/logger"
)

var ErrMappings = errors.New("translate: invalid block mappings")

// Mappings converts Java block state ids into Bedrock runtime ids.
// It is read-only after construction and safe for concurrent use.
type Mappings struct {
	Air   uint32
	Water uint32

	states      map[int]uint32
	waterlogged *bitset.BitSet
	log         *logger.Logger
}

type mappingsFile struct {
	Air         uint32         `yaml:"air"`
	Water       uint32         `yaml:"water"`
	States      map[int]uint32 `yaml:"states"`
	Waterlogged []int          `yaml:"waterlogged"`
}

// NewMappings builds mappings from a Java to Bedrock table. Java ids listed
// in waterlogged additionally get water on the liquid layer.
func NewMappings(air, water uint32, states map[int]uint32, waterlogged []int) *Mappings {
	m := &Mappings{
		Air:         air,
		Water:       water,
		states:      make(map[int]uint32, len(states)),
		waterlogged: bitset.New(uint(len(states))),
		log:         logger.Nop(),
	}
	for java, bedrock := range states {
		m.states[java] = bedrock
	}
	for _, id := range waterlogged {
		if id >= 0 {
			m.waterlogged.Set(uint(id))
		}
	}
	return m
}

// LoadMappings reads a YAML mapping table:
//
//	air: 0
//	water: 7
//	states: {0: 0, 1: 12}
//	waterlogged: [34]
func LoadMappings(path string, log *logger.Logger) (*Mappings, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var f mappingsFile
	if err := yaml.NewDecoder(file).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMappings, path, err)
	}
	for id := range f.States {
		if id < 0 {
			return nil, fmt.Errorf("%w: %s: negative java state %d", ErrMappings, path, id)
		}
	}
	m := NewMappings(f.Air, f.Water, f.States, f.Waterlogged)
	if log != nil {
		m.log = log
	}
	m.log.Debug("Loaded %d block mappings from %s", len(m.states), path)
	return m, nil
}

// BedrockID returns the runtime id for a Java state. States missing from the
// table become air.
func (m *Mappings) BedrockID(javaID int) uint32 {
	if id, ok := m.states[javaID]; ok {
		return id
	}
	m.log.Debug("No Bedrock mapping for Java block state %d, using air", javaID)
	return m.Air
}

func (m *Mappings) IsWaterlogged(javaID int) bool {
	return javaID >= 0 && m.waterlogged.Test(uint(javaID))
}

func (m *Mappings) Len() int {
	return len(m.states)
}
