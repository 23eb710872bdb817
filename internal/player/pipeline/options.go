package pipeline

// QueueCapacities sets the bounded capacity of the three inter-stage data
// queues. src-queue and the two control queues have fixed capacities and
// are not configurable.
type QueueCapacities struct {
	PktQueue    int
	FramesQueue int
	SinkQueue   int
}

func (c *QueueCapacities) applyDefaults() {
	if c.PktQueue < 1 {
		c.PktQueue = 8
	}
	if c.FramesQueue < 1 {
		c.FramesQueue = 8
	}
	if c.SinkQueue < 1 {
		c.SinkQueue = 8
	}
}

const (
	srcQueueCap = 1
	ctlQueueCap = 5
)
