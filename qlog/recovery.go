package qlog

// RecoveryParametersSet records the loss-recovery and congestion-control
// constants in use.
type RecoveryParametersSet struct {
	ReorderingThreshold           *uint16  `json:"reordering_threshold,omitempty"`
	TimeThreshold                 *float32 `json:"time_threshold,omitempty"`
	TimerGranularity              *uint16  `json:"timer_granularity,omitempty"`
	InitialRTT                    *float32 `json:"initial_rtt,omitempty"`
	MaxDatagramSize               *uint32  `json:"max_datagram_size,omitempty"`
	InitialCongestionWindow       *uint64  `json:"initial_congestion_window,omitempty"`
	MinimumCongestionWindow       *uint32  `json:"minimum_congestion_window,omitempty"`
	LossReductionFactor           *float32 `json:"loss_reduction_factor,omitempty"`
	PersistentCongestionThreshold *uint16  `json:"persistent_congestion_threshold,omitempty"`
}

func (RecoveryParametersSet) Category() EventCategory { return CategoryRecovery }
func (RecoveryParametersSet) Type() string            { return "parameters_set" }

// MetricsUpdated records new values of the recovery metrics. Only changed
// fields are populated.
type MetricsUpdated struct {
	MinRTT           *float32 `json:"min_rtt,omitempty"`
	SmoothedRTT      *float32 `json:"smoothed_rtt,omitempty"`
	LatestRTT        *float32 `json:"latest_rtt,omitempty"`
	RTTVariance      *float32 `json:"rtt_variance,omitempty"`
	PTOCount         *uint16  `json:"pto_count,omitempty"`
	CongestionWindow *uint64  `json:"congestion_window,omitempty"`
	BytesInFlight    *uint64  `json:"bytes_in_flight,omitempty"`
	SSThresh         *uint64  `json:"ssthresh,omitempty"`
	PacketsInFlight  *uint64  `json:"packets_in_flight,omitempty"`
	PacingRate       *uint64  `json:"pacing_rate,omitempty"`
}

func (MetricsUpdated) Category() EventCategory { return CategoryRecovery }
func (MetricsUpdated) Type() string            { return "metrics_updated" }

// CongestionStateUpdated records a congestion-control state transition, for
// example into recovery or slow start exit.
type CongestionStateUpdated struct {
	Old     string `json:"old,omitempty"`
	New     string `json:"new"`
	Trigger string `json:"trigger,omitempty"`
}

func (CongestionStateUpdated) Category() EventCategory { return CategoryRecovery }
func (CongestionStateUpdated) Type() string            { return "congestion_state_updated" }

// TimerType distinguishes the ack-based loss timer from the PTO timer.
type TimerType string

// Timer types.
const (
	TimerACK TimerType = "ack"
	TimerPTO TimerType = "pto"
)

// TimerEventType enumerates what happened to a loss timer.
type TimerEventType string

// Timer event types.
const (
	TimerSet       TimerEventType = "set"
	TimerExpired   TimerEventType = "expired"
	TimerCancelled TimerEventType = "cancelled"
)

// LossTimerUpdated records a change to the loss detection timer.
type LossTimerUpdated struct {
	TimerType         TimerType         `json:"timer_type,omitempty"`
	PacketNumberSpace PacketNumberSpace `json:"packet_number_space,omitempty"`
	EventType         TimerEventType    `json:"event_type"`
	// Delta is the time until the timer fires, in milliseconds, for set
	// events.
	Delta *float32 `json:"delta,omitempty"`
}

func (LossTimerUpdated) Category() EventCategory { return CategoryRecovery }
func (LossTimerUpdated) Type() string            { return "loss_timer_updated" }

// PacketLost records a packet declared lost by loss detection.
type PacketLost struct {
	Header  *PacketHeader `json:"header,omitempty"`
	Frames  []Frame       `json:"frames,omitempty"`
	Trigger string        `json:"trigger,omitempty"`
}

func (PacketLost) Category() EventCategory { return CategoryRecovery }
func (PacketLost) Type() string            { return "packet_lost" }

// MarkedForRetransmit records frames queued for retransmission.
type MarkedForRetransmit struct {
	Frames []Frame `json:"frames,omitempty"`
}

func (MarkedForRetransmit) Category() EventCategory { return CategoryRecovery }
func (MarkedForRetransmit) Type() string            { return "marked_for_retransmit" }

// ECNState enumerates the states of ECN capability validation on a path.
type ECNState string

// ECN validation states.
const (
	ECNTesting      ECNState = "testing"
	ECNUnknownState ECNState = "unknown"
	ECNFailed       ECNState = "failed"
	ECNCapable      ECNState = "capable"
)

// ECNStateUpdated records progress of ECN validation.
type ECNStateUpdated struct {
	Old     ECNState `json:"old,omitempty"`
	New     ECNState `json:"new"`
	Trigger string   `json:"trigger,omitempty"`
}

func (ECNStateUpdated) Category() EventCategory { return CategoryRecovery }
func (ECNStateUpdated) Type() string            { return "ecn_state_updated" }
