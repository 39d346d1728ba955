package store

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/joseph-ayodele/datasheet-miner/constants"
	"github.com/joseph-ayodele/datasheet-miner/internal/common"
	"github.com/joseph-ayodele/datasheet-miner/internal/identity"
)

// Admin wraps the engine with destructive maintenance operations. Every
// operation supports a dry run and, when live, demands a typed
// confirmation phrase before touching data.
type Admin struct {
	engine *Engine

	// Confirm is the stream the confirmation phrase is read from,
	// normally os.Stdin.
	Confirm io.Reader
	// Out receives previews and prompts, normally os.Stdout.
	Out io.Writer
}

func NewAdmin(engine *Engine, confirm io.Reader, out io.Writer) *Admin {
	return &Admin{engine: engine, Confirm: confirm, Out: out}
}

// keyRef identifies one item for deletion plus enough context to
// preview it.
type keyRef struct {
	pk      string
	sk      string
	display string
}

// DeleteAll removes every item in the table. Confirmation phrase:
// "DELETE ALL".
func (a *Admin) DeleteAll(ctx context.Context, dryRun bool) (int, error) {
	items, err := a.engine.ScanAll(ctx, "", nil)
	if err != nil {
		return 0, err
	}
	refs := itemsToRefs(items)
	return a.execute(ctx, refs, dryRun, "DELETE ALL", "all records")
}

// DeleteByType removes every item of one record type. Confirmation
// phrase: "DELETE <TYPE>" with the type upper-cased, e.g. "DELETE MOTOR".
func (a *Admin) DeleteByType(ctx context.Context, rt constants.RecordType, dryRun bool) (int, error) {
	items, err := a.engine.ScanAll(ctx, "PK = :pk", map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: partitionKey(rt)},
	})
	if err != nil {
		return 0, err
	}
	refs := itemsToRefs(items)
	phrase := "DELETE " + strings.ToUpper(string(rt))
	return a.execute(ctx, refs, dryRun, phrase, fmt.Sprintf("records of type %s", rt))
}

// DeleteByFamily removes every item whose product_family matches.
// Confirmation phrase: "DELETE FAMILY".
func (a *Admin) DeleteByFamily(ctx context.Context, family string, dryRun bool) (int, error) {
	items, err := a.engine.ScanAll(ctx, "product_family = :family", map[string]types.AttributeValue{
		":family": &types.AttributeValueMemberS{Value: family},
	})
	if err != nil {
		return 0, err
	}
	refs := itemsToRefs(items)
	return a.execute(ctx, refs, dryRun, "DELETE FAMILY", fmt.Sprintf("records in family %q", family))
}

// DeleteDuplicateGroups groups items by normalized part number within a
// type, keeps the first member of each group and deletes the rest.
// Confirmation phrase: "DELETE DUPLICATES".
func (a *Admin) DeleteDuplicateGroups(ctx context.Context, rt constants.RecordType, dryRun bool) (int, error) {
	items, err := a.engine.ScanAll(ctx, "PK = :pk", map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: partitionKey(rt)},
	})
	if err != nil {
		return 0, err
	}

	groups := make(map[string][]keyRef)
	var order []string
	for _, item := range items {
		part := identity.Normalize(attrString(item, "part_number"))
		if part == "" {
			continue
		}
		if _, seen := groups[part]; !seen {
			order = append(order, part)
		}
		groups[part] = append(groups[part], itemToRef(item))
	}

	var refs []keyRef
	for _, part := range order {
		group := groups[part]
		if len(group) > 1 {
			refs = append(refs, group[1:]...)
		}
	}
	return a.execute(ctx, refs, dryRun, "DELETE DUPLICATES",
		fmt.Sprintf("duplicate %s records (keeping first of each group)", rt))
}

// execute reports the batch, and deletes it only after the exact phrase
// is typed. dryRun reports without prompting or deleting.
func (a *Admin) execute(ctx context.Context, refs []keyRef, dryRun bool, phrase, what string) (int, error) {
	fmt.Fprintf(a.Out, "matched %d %s\n", len(refs), what)
	for i, ref := range refs {
		if i == 5 {
			fmt.Fprintf(a.Out, "  ... and %d more\n", len(refs)-5)
			break
		}
		fmt.Fprintf(a.Out, "  %s\n", ref.display)
	}
	if dryRun || len(refs) == 0 {
		return 0, nil
	}

	fmt.Fprintf(a.Out, "type %q to proceed: ", phrase)
	scanner := bufio.NewScanner(a.Confirm)
	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != phrase {
		fmt.Fprintln(a.Out, "aborted")
		return 0, nil
	}
	return a.deleteRefs(ctx, refs)
}

func (a *Admin) deleteRefs(ctx context.Context, refs []keyRef) (int, error) {
	deleted := 0
	for start := 0; start < len(refs); start += batchSize {
		end := min(start+batchSize, len(refs))
		requests := make([]types.WriteRequest, 0, end-start)
		for _, ref := range refs[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: ref.pk},
						"SK": &types.AttributeValueMemberS{Value: ref.sk},
					},
				},
			})
		}
		unprocessed, err := a.engine.writeBatch(ctx, requests)
		if err != nil {
			return deleted, fmt.Errorf("%w: batch delete: %v", common.ErrStorage, err)
		}
		if len(unprocessed) > 0 {
			retry, retryErr := a.engine.writeBatch(ctx, unprocessed)
			if retryErr != nil || len(retry) > 0 {
				return deleted, fmt.Errorf("%w: %d deletions unprocessed", common.ErrStorage, len(unprocessed))
			}
		}
		deleted += len(requests)
		if deleted%100 < batchSize {
			a.engine.logger.Info("store.admin.progress", "deleted", deleted, "total", len(refs))
		}
	}
	a.engine.logger.Info("store.admin.done", "deleted", deleted)
	return deleted, nil
}

func itemsToRefs(items []map[string]types.AttributeValue) []keyRef {
	refs := make([]keyRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, itemToRef(item))
	}
	return refs
}

func itemToRef(item map[string]types.AttributeValue) keyRef {
	display := attrString(item, "manufacturer")
	if part := attrString(item, "part_number"); part != "" {
		display += " " + part
	} else if name := attrString(item, "product_name"); name != "" {
		display += " " + name
	}
	return keyRef{
		pk:      attrString(item, "PK"),
		sk:      attrString(item, "SK"),
		display: strings.TrimSpace(display),
	}
}

func attrString(item map[string]types.AttributeValue, key string) string {
	if av, ok := item[key].(*types.AttributeValueMemberS); ok {
		return av.Value
	}
	return ""
}
