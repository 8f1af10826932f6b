package qlog

// QpackOwner indicates which endpoint's QPACK state an event describes.
type QpackOwner string

// QPACK owners.
const (
	QpackOwnerLocal  QpackOwner = "local"
	QpackOwnerRemote QpackOwner = "remote"
)

// QpackInstructionType enumerates the QPACK encoder and decoder stream
// instructions (RFC 9204 section 4).
type QpackInstructionType string

// QPACK instructions.
const (
	QpackSetDynamicTableCapacity    QpackInstructionType = "set_dynamic_table_capacity"
	QpackInsertWithNameReference    QpackInstructionType = "insert_with_name_reference"
	QpackInsertWithoutNameReference QpackInstructionType = "insert_without_name_reference"
	QpackDuplicate                  QpackInstructionType = "duplicate"
	QpackHeaderAcknowledgement      QpackInstructionType = "header_acknowledgement"
	QpackStreamCancellation         QpackInstructionType = "stream_cancellation"
	QpackInsertCountIncrement       QpackInstructionType = "insert_count_increment"
)

// QpackInstruction is one encoder or decoder stream instruction,
// discriminated by InstructionType.
type QpackInstruction struct {
	InstructionType QpackInstructionType `json:"instruction_type"`

	// set_dynamic_table_capacity
	Capacity *uint64 `json:"capacity,omitempty"`

	// insert_with_name_reference
	TableType QpackTableType `json:"table_type,omitempty"`
	NameIndex *uint64        `json:"name_index,omitempty"`

	// insert_without_name_reference
	HuffmanEncodedName  *bool   `json:"huffman_encoded_name,omitempty"`
	NameLength          *uint64 `json:"name_length,omitempty"`
	Name                string  `json:"name,omitempty"`
	HuffmanEncodedValue *bool   `json:"huffman_encoded_value,omitempty"`
	ValueLength         *uint64 `json:"value_length,omitempty"`
	Value               string  `json:"value,omitempty"`

	// duplicate
	Index *uint64 `json:"index,omitempty"`

	// header_acknowledgement, stream_cancellation
	StreamID *uint64 `json:"stream_id,omitempty"`

	// insert_count_increment
	Increment *uint64 `json:"increment,omitempty"`
}

// QpackTableType distinguishes the static from the dynamic table.
type QpackTableType string

// QPACK table types.
const (
	QpackTableStatic  QpackTableType = "static"
	QpackTableDynamic QpackTableType = "dynamic"
)

// QpackDynamicTableEntry is one entry of the dynamic table.
type QpackDynamicTableEntry struct {
	Index uint64 `json:"index"`
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

// QpackHeaderBlockPrefix is the prefix of an encoded field section
// (RFC 9204 section 4.5.1).
type QpackHeaderBlockPrefix struct {
	RequiredInsertCount uint64 `json:"required_insert_count"`
	SignBit             bool   `json:"sign_bit"`
	DeltaBase           uint64 `json:"delta_base"`
}

// QpackHeaderBlockRepresentation is one field line representation of an
// encoded field section.
type QpackHeaderBlockRepresentation struct {
	HeaderType string  `json:"header_type"`
	Index      *uint64 `json:"index,omitempty"`

	IsStatic     *bool `json:"is_static,omitempty"`
	PostBase     *bool `json:"post_base,omitempty"`
	NeverIndexed *bool `json:"never_indexed,omitempty"`

	HuffmanEncodedName  *bool  `json:"huffman_encoded_name,omitempty"`
	Name                string `json:"name,omitempty"`
	HuffmanEncodedValue *bool  `json:"huffman_encoded_value,omitempty"`
	Value               string `json:"value,omitempty"`
}

// QpackStateUpdated records new values of the encoder or decoder dynamic
// table state.
type QpackStateUpdated struct {
	Owner                QpackOwner `json:"owner,omitempty"`
	DynamicTableCapacity *uint64    `json:"dynamic_table_capacity,omitempty"`
	DynamicTableSize     *uint64    `json:"dynamic_table_size,omitempty"`
	KnownReceivedCount   *uint64    `json:"known_received_count,omitempty"`
	CurrentInsertCount   *uint64    `json:"current_insert_count,omitempty"`
}

func (QpackStateUpdated) Category() EventCategory { return CategoryQpack }
func (QpackStateUpdated) Type() string            { return "state_updated" }

// QpackStreamState enumerates blocked-stream states.
type QpackStreamState string

// QPACK stream states.
const (
	QpackStreamBlocked   QpackStreamState = "blocked"
	QpackStreamUnblocked QpackStreamState = "unblocked"
)

// QpackStreamStateUpdated records a stream blocking or unblocking on
// dynamic table references.
type QpackStreamStateUpdated struct {
	StreamID uint64           `json:"stream_id"`
	State    QpackStreamState `json:"state"`
}

func (QpackStreamStateUpdated) Category() EventCategory { return CategoryQpack }
func (QpackStreamStateUpdated) Type() string            { return "stream_state_updated" }

// QpackUpdateType distinguishes dynamic table insertions from evictions.
type QpackUpdateType string

// Dynamic table update types.
const (
	QpackTableInserted QpackUpdateType = "inserted"
	QpackTableEvicted  QpackUpdateType = "evicted"
)

// QpackDynamicTableUpdated records entries added to or evicted from the
// dynamic table.
type QpackDynamicTableUpdated struct {
	Owner      QpackOwner               `json:"owner,omitempty"`
	UpdateType QpackUpdateType          `json:"update_type"`
	Entries    []QpackDynamicTableEntry `json:"entries,omitempty"`
}

func (QpackDynamicTableUpdated) Category() EventCategory { return CategoryQpack }
func (QpackDynamicTableUpdated) Type() string            { return "dynamic_table_updated" }

// QpackHeadersEncoded records a field section being encoded.
type QpackHeadersEncoded struct {
	StreamID    *uint64                          `json:"stream_id,omitempty"`
	Headers     []HTTPHeader                     `json:"headers,omitempty"`
	BlockPrefix *QpackHeaderBlockPrefix          `json:"block_prefix,omitempty"`
	HeaderBlock []QpackHeaderBlockRepresentation `json:"header_block,omitempty"`
	Raw         *RawInfo                         `json:"raw,omitempty"`
}

func (QpackHeadersEncoded) Category() EventCategory { return CategoryQpack }
func (QpackHeadersEncoded) Type() string            { return "headers_encoded" }

// QpackHeadersDecoded records a field section being decoded.
type QpackHeadersDecoded struct {
	StreamID    *uint64                          `json:"stream_id,omitempty"`
	Headers     []HTTPHeader                     `json:"headers,omitempty"`
	BlockPrefix *QpackHeaderBlockPrefix          `json:"block_prefix,omitempty"`
	HeaderBlock []QpackHeaderBlockRepresentation `json:"header_block,omitempty"`
	Raw         *RawInfo                         `json:"raw,omitempty"`
}

func (QpackHeadersDecoded) Category() EventCategory { return CategoryQpack }
func (QpackHeadersDecoded) Type() string            { return "headers_decoded" }

// QpackInstructionCreated records an instruction put on the encoder or
// decoder stream.
type QpackInstructionCreated struct {
	Instruction QpackInstruction `json:"instruction"`
	Raw         *RawInfo         `json:"raw,omitempty"`
}

func (QpackInstructionCreated) Category() EventCategory { return CategoryQpack }
func (QpackInstructionCreated) Type() string            { return "instruction_created" }

// QpackInstructionParsed records an instruction read from the encoder or
// decoder stream.
type QpackInstructionParsed struct {
	Instruction QpackInstruction `json:"instruction"`
	Raw         *RawInfo         `json:"raw,omitempty"`
}

func (QpackInstructionParsed) Category() EventCategory { return CategoryQpack }
func (QpackInstructionParsed) Type() string            { return "instruction_parsed" }
