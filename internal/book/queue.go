package book

import (
	"fmt"

	"marketdepth/internal/common"
)

// PriceLevelQueue is the ordered sequence of resting orders at one
// price, plus cached aggregates. Invariants:
//
//	numOrders == count(nodes)
//	depth     == sum(node.Size)
//	depth == 0 iff numOrders == 0 iff empty
type PriceLevelQueue struct {
	Price common.Price

	numOrders int
	depth     uint64
	head      *OrderNode
	tail      *OrderNode
}

// NewPriceLevelQueue creates an empty queue at the given price.
func NewPriceLevelQueue(price common.Price) *PriceLevelQueue {
	return &PriceLevelQueue{Price: price}
}

// Append creates a new node from msg, links it as the new tail, and
// updates the cached aggregates. O(1).
func (q *PriceLevelQueue) Append(msg common.Message) *OrderNode {
	node := NewOrderNode(msg)

	node.prev = q.tail
	if q.tail != nil {
		q.tail.next = node
	}
	if q.head == nil {
		q.head = node
	}
	q.tail = node

	q.numOrders++
	q.depth += uint64(msg.Size)

	return node
}

// Remove decrements node's size by amount. If the node's size reaches
// zero it is unlinked from the chain (fixing both neighbours and the
// head/tail pointers) and the order count drops. amount must not exceed
// node.Size, or ErrInvariantViolation is returned and nothing is
// mutated.
func (q *PriceLevelQueue) Remove(node *OrderNode, amount uint32) error {
	if amount > node.Size {
		return fmt.Errorf("%w: remove amount %d exceeds order %d size %d",
			common.ErrInvariantViolation, amount, node.OrderID, node.Size)
	}

	node.Size -= amount
	q.depth -= uint64(amount)

	if node.Size != 0 {
		return nil
	}

	q.numOrders--

	if node == q.head {
		q.head = node.next
	}
	if node == q.tail {
		if node.next != nil {
			q.tail = node.next
		} else {
			q.tail = node.prev
		}
	}
	if node.prev != nil {
		node.prev.next = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	}
	node.prev, node.next = nil, nil

	return nil
}

// NumOrders returns the cached order count. O(1).
func (q *PriceLevelQueue) NumOrders() int { return q.numOrders }

// NumShares returns the cached aggregate depth. O(1).
func (q *PriceLevelQueue) NumShares() uint64 { return q.depth }

// Empty reports whether the queue holds no resting orders.
func (q *PriceLevelQueue) Empty() bool { return q.numOrders == 0 }

// Head returns the earliest-arrived resting node, or nil if empty.
func (q *PriceLevelQueue) Head() *OrderNode { return q.head }

// Tail returns the most-recently-arrived resting node, or nil if empty.
func (q *PriceLevelQueue) Tail() *OrderNode { return q.tail }

// Orders walks the chain head to tail and returns a snapshot slice. This
// is O(n) and intended for rendering and tests, not the hot path.
func (q *PriceLevelQueue) Orders() []*OrderNode {
	orders := make([]*OrderNode, 0, q.numOrders)
	for n := q.head; n != nil; n = n.next {
		orders = append(orders, n)
	}
	return orders
}
