package message

// Find returns the first message with id in a depth-first walk of msgs.
func Find(msgs []*Message, id string) (*Message, bool) {
	for _, m := range msgs {
		if m == nil {
			continue
		}
		if m.ID == id {
			return m, true
		}
		if found, ok := Find(m.Replies, id); ok {
			return found, true
		}
	}
	return nil, false
}

// Update locates id depth first and replaces that node with fn(node). The
// returned slice is a new tree in which every ancestor of the changed node is
// rebuilt and every other subtree is shared with msgs. When nothing matches
// msgs is returned as is together with false.
func Update(msgs []*Message, id string, fn func(*Message) *Message) ([]*Message, bool) {
	for i, m := range msgs {
		if m == nil {
			continue
		}
		var next *Message
		switch {
		case m.ID == id:
			next = fn(m)
		case len(m.Replies) > 0:
			replies, ok := Update(m.Replies, id, fn)
			if !ok {
				continue
			}
			cp := *m
			cp.Replies = replies
			next = &cp
		default:
			continue
		}
		out := make([]*Message, len(msgs))
		copy(out, msgs)
		out[i] = next
		return out, true
	}
	return msgs, false
}

// Walk visits msgs in pre-order, passing the nesting depth (0 for top level).
func Walk(msgs []*Message, fn func(m *Message, depth int)) {
	walk(msgs, 0, fn)
}

func walk(msgs []*Message, depth int, fn func(m *Message, depth int)) {
	for _, m := range msgs {
		if m == nil {
			continue
		}
		fn(m, depth)
		walk(m.Replies, depth+1, fn)
	}
}

// Count is the number of messages in the tree, replies included.
func Count(msgs []*Message) int {
	n := 0
	Walk(msgs, func(*Message, int) { n++ })
	return n
}

// Page returns up to limit top-level messages that come before the message
// with id before, oldest first. An empty before pages back from the end. A
// limit of zero or less returns everything before the cursor. hasMore reports
// whether older messages remain. An unknown cursor yields an empty page.
func Page(msgs []*Message, before string, limit int) (page []*Message, hasMore bool) {
	end := len(msgs)
	if before != "" {
		end = -1
		for i, m := range msgs {
			if m != nil && m.ID == before {
				end = i
				break
			}
		}
		if end < 0 {
			return nil, false
		}
	}
	start := 0
	if limit > 0 && end-limit > 0 {
		start = end - limit
	}
	return msgs[start:end:end], start > 0
}
