package diagnostics

import (
	"fmt"

	"github.com/golang/protobuf/proto"

	"github.com/archangelsys/afc004-iop/internal/diagnostics/telemetrypb"
)

// Encode marshals a HealthSnapshot into its protobuf wire form for
// publish/history-sink storage (§4.9: "encodes it as a compact binary
// message").
func Encode(s HealthSnapshot) ([]byte, error) {
	wire := &telemetrypb.HealthSnapshot{
		DeviceId:  s.DeviceID,
		TimeMs:    s.TimeMs,
		BootFault: s.BootFault,
	}
	for _, g := range s.Groups {
		wire.Groups = append(wire.Groups, &telemetrypb.GroupHealth{
			Name:           g.Name,
			HasBusFailed:   g.HasBusFailed,
			CurrentCounts:  g.CurrentCounts,
			ParityDiscards: g.ParityDiscards,
			StaleLabels:    g.StaleLabels,
		})
	}
	b, err := proto.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: marshal snapshot: %w", err)
	}
	return b, nil
}
