// Package telemetrypb holds the wire message for a published
// HealthSnapshot. It is written by hand in the shape protoc-gen-go's
// github.com/golang/protobuf v1.x output takes (struct tags plus the
// Reset/String/ProtoMessage trio), since the .proto source is not part of
// this module's build; proto.Marshal/Unmarshal drive off the struct tags
// through reflection exactly as they would for codegen'd output.
package telemetrypb

import "fmt"

// GroupHealth is one group's wire-level health record.
type GroupHealth struct {
	Name           string  `protobuf:"bytes,1,opt,name=name" json:"name,omitempty"`
	HasBusFailed   bool    `protobuf:"varint,2,opt,name=has_bus_failed" json:"has_bus_failed,omitempty"`
	CurrentCounts  uint32  `protobuf:"varint,3,opt,name=current_counts" json:"current_counts,omitempty"`
	ParityDiscards uint64  `protobuf:"varint,4,opt,name=parity_discards" json:"parity_discards,omitempty"`
	StaleLabels    []byte  `protobuf:"bytes,5,opt,name=stale_labels" json:"stale_labels,omitempty"`
}

func (m *GroupHealth) Reset()         { *m = GroupHealth{} }
func (m *GroupHealth) String() string { return fmt.Sprintf("%+v", *m) }
func (*GroupHealth) ProtoMessage()    {}

// HealthSnapshot is the top-level wire message published to the telemetry
// broker and, optionally, appended to the history sink.
type HealthSnapshot struct {
	DeviceId  string         `protobuf:"bytes,1,opt,name=device_id" json:"device_id,omitempty"`
	TimeMs    uint32         `protobuf:"varint,2,opt,name=time_ms" json:"time_ms,omitempty"`
	BootFault bool           `protobuf:"varint,3,opt,name=boot_fault" json:"boot_fault,omitempty"`
	Groups    []*GroupHealth `protobuf:"bytes,4,rep,name=groups" json:"groups,omitempty"`
}

func (m *HealthSnapshot) Reset()         { *m = HealthSnapshot{} }
func (m *HealthSnapshot) String() string { return fmt.Sprintf("%+v", *m) }
func (*HealthSnapshot) ProtoMessage()    {}
