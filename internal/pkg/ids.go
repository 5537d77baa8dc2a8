package pkg

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	connSuffixLength = 12
	replicaIDLength  = 8
)

// GenerateConnectionID - generates a cluster-unique identity for one websocket connection.
// The replica prefix and the millisecond timestamp keep identities readable in logs.
func GenerateConnectionID(replicaID string) string {
	suffix, err := gonanoid.New(connSuffixLength)
	if err != nil {
		suffix = strings.ReplaceAll(uuid.NewString(), "-", "")[:connSuffixLength]
	}

	return fmt.Sprintf("%s-%d-%s", replicaID, time.Now().UnixMilli(), suffix)
}

// GenerateReplicaID - a random replica identity for replicas started without --id.
func GenerateReplicaID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:replicaIDLength])
}
