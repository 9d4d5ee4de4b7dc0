package interprocess

// Channel pairs two one-way queues into a bidirectional duplex. The server
// side publishes on queue "P"+name and subscribes on "S"+name; a client
// opened with asClient inverts the pairing, so each side reads what the
// other writes.
type Channel struct {
	pub *Publisher
	sub *Subscriber
}

// NewChannel opens both halves of the duplex described by opt. Exactly one
// participant should open each side.
func NewChannel(opt Options, asClient bool) (*Channel, error) {
	if err := opt.validate(); err != nil {
		return nil, err
	}

	pubName, subName := "P"+opt.Name, "S"+opt.Name
	if asClient {
		pubName, subName = subName, pubName
	}

	pub, err := NewPublisher(opt.withName(pubName))
	if err != nil {
		return nil, err
	}
	sub, err := NewSubscriber(opt.withName(subName))
	if err != nil {
		pub.Close()
		return nil, err
	}
	return &Channel{pub: pub, sub: sub}, nil
}

// Publisher returns the outgoing half.
func (c *Channel) Publisher() *Publisher {
	return c.pub
}

// Subscriber returns the incoming half.
func (c *Channel) Subscriber() *Subscriber {
	return c.sub
}

// Close closes both halves.
func (c *Channel) Close() {
	c.pub.Close()
	c.sub.Close()
}
