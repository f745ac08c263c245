package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// InvoiceNumbers hands out INV-<snowflake> numbers. Snowflake ids are unique
// per node even within the same millisecond.
type InvoiceNumbers struct {
	node *snowflake.Node
}

func NewInvoiceNumbers(nodeID int64) (*InvoiceNumbers, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &InvoiceNumbers{node: node}, nil
}

func (g *InvoiceNumbers) Next() string {
	return "INV-" + g.node.Generate().String()
}
