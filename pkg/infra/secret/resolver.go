package secret

import (
	"context"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

// Scheme prefixes configuration values that refer to a Secret Manager version, e.g.
// gcpsm://projects/my-project/secrets/slack-webhook/versions/latest
const Scheme = "gcpsm://"

// AccessFunc returns the payload of a secret version resource name
type AccessFunc func(ctx context.Context, name string) ([]byte, error)

// Resolver replaces secret references with their payloads
type Resolver struct {
	access AccessFunc
}

// NewResolver creates a Resolver using access
func NewResolver(access AccessFunc) *Resolver {
	return &Resolver{access: access}
}

// IsReference reports whether value must be resolved
func IsReference(value string) bool {
	return strings.HasPrefix(value, Scheme)
}

// Resolve returns value unchanged unless it is a secret reference
func (x *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	if !IsReference(value) {
		return value, nil
	}

	name := strings.TrimPrefix(value, Scheme)
	if !strings.HasPrefix(name, "projects/") || !strings.Contains(name, "/secrets/") {
		return "", goerr.New("invalid secret reference",
			goerr.V("reference", value),
			goerr.T(types.ErrTagInvalidConfig),
		)
	}
	if !strings.Contains(name, "/versions/") {
		name += "/versions/latest"
	}

	data, err := x.access(ctx, name)
	if err != nil {
		return "", goerr.Wrap(err, "failed to access secret", goerr.V("name", name))
	}

	return strings.TrimSpace(string(data)), nil
}

// ResolveAll resolves every referenced value in place. A Secret Manager client is only
// created when at least one value is a reference.
func ResolveAll(ctx context.Context, values ...*string) error {
	var refs []*string
	for _, v := range values {
		if v != nil && IsReference(*v) {
			refs = append(refs, v)
		}
	}
	if len(refs) == 0 {
		return nil
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to create Secret Manager client")
	}
	defer client.Close()

	resolver := NewResolver(func(ctx context.Context, name string) ([]byte, error) {
		resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
			Name: name,
		})
		if err != nil {
			return nil, err
		}
		return resp.GetPayload().GetData(), nil
	})

	for _, v := range refs {
		resolved, err := resolver.Resolve(ctx, *v)
		if err != nil {
			return err
		}
		*v = resolved
	}

	return nil
}
