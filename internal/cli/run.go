package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/karolt/opcli/internal/client"
	"github.com/karolt/opcli/internal/config"
	"github.com/karolt/opcli/internal/source"
	"github.com/karolt/opcli/internal/tree"
)

// addResourceCommands turns every resource of the compiled tree into
// a subcommand and every operation into a sub-subcommand whose flags
// are derived from the operation's parameters.
func addResourceCommands(root *cobra.Command, t *tree.Tree) {
	for i := range t.Resources {
		res := &t.Resources[i]
		resCmd := &cobra.Command{
			Use:   res.Name,
			Short: res.Name,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cmd.Help()
			},
		}
		for j := range res.Ops {
			resCmd.AddCommand(operationCommand(&res.Ops[j]))
		}
		root.AddCommand(resCmd)
	}
}

func operationCommand(op *tree.Operation) *cobra.Command {
	short := ""
	if op.Summary != nil {
		short = *op.Summary
	}
	cmd := &cobra.Command{
		Use:   op.Name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, op)
		},
	}

	flags := cmd.Flags()
	flags.String("params", "", "JSON object of query parameters")
	flags.String("body", "", "JSON request body (inline, @FILE, URL or S3)")
	flags.String("form", "", "Form body as JSON object (inline, @FILE, URL or S3)")
	for _, p := range op.Params {
		if p.SchemaType == "array" {
			flags.StringArray(p.Flag, nil, paramValueName(p))
		} else {
			flags.String(p.Flag, "", paramValueName(p))
		}
		if p.In == "path" && p.Required && p.Name != "ad_account_id" {
			cmd.MarkFlagRequired(p.Flag)
		}
	}
	return cmd
}

func paramValueName(p tree.Param) string {
	if p.Style != nil && *p.Style == "deepObject" {
		return "JSON"
	}
	if p.SchemaType == "array" {
		if p.ItemsType != nil {
			return *p.ItemsType
		}
		return "value"
	}
	return p.SchemaType
}

func runOperation(cmd *cobra.Command, op *tree.Operation) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}
	t, err := tree.Load(cfg.Tree)
	if err != nil {
		return fmt.Errorf("loading command tree: %w", err)
	}

	c := newClient(cmd, cfg, t)
	auth, err := selectAuth(op, cfg)
	if err != nil {
		return err
	}

	path, err := buildPath(cmd, op, cfg)
	if err != nil {
		return err
	}
	rawURL := c.BuildURL(path)

	query, err := buildQuery(cmd, op)
	if err != nil {
		return err
	}
	body, err := buildBody(cmd, op)
	if err != nil {
		return err
	}

	var response any
	if boolFlag(cmd, "all") && op.Paginated {
		response, err = c.PaginateAll(cmd.Context(), op.Method, rawURL, auth, query,
			intFlag(cmd, "max-pages"), intFlag(cmd, "max-items"))
	} else {
		response, err = c.Request(cmd.Context(), op.Method, rawURL, auth, query, body)
	}
	if err != nil {
		return err
	}

	output := response
	if !boolFlag(cmd, "raw") {
		if m, ok := response.(map[string]any); ok {
			if items, ok := m["items"]; ok {
				output = items
			}
		}
	}
	return writeJSON(cmd.OutOrStdout(), output, boolFlag(cmd, "pretty"))
}

func newClient(cmd *cobra.Command, cfg *config.Config, t *tree.Tree) *client.Client {
	var debug io.Writer
	if boolFlag(cmd, "debug") {
		debug = cmd.ErrOrStderr()
	}
	return client.New(
		cfg.EffectiveBaseURL(t.BaseURL),
		time.Duration(cfg.Timeout)*time.Second,
		debug,
	)
}

// selectAuth picks credentials based on the operation's security
// requirements: basic client credentials win, then a conversions
// token when one is configured, then the bearer access token.
func selectAuth(op *tree.Operation, cfg *config.Config) (client.Auth, error) {
	for _, req := range op.Security {
		if _, ok := req["basic"]; ok {
			if cfg.Auth.ClientID == "" || cfg.Auth.ClientSecret == "" {
				return client.Auth{}, fmt.Errorf("client id and secret required (OPCLI_CLIENT_ID / OPCLI_CLIENT_SECRET)")
			}
			return client.Basic(cfg.Auth.ClientID, cfg.Auth.ClientSecret), nil
		}
	}
	for _, req := range op.Security {
		if _, ok := req["conversion_token"]; ok && cfg.Auth.ConversionToken != "" {
			return client.Bearer(cfg.Auth.ConversionToken), nil
		}
	}
	if cfg.Auth.AccessToken == "" {
		return client.Auth{}, fmt.Errorf("access token required (OPCLI_ACCESS_TOKEN)")
	}
	return client.Bearer(cfg.Auth.AccessToken), nil
}

// buildPath substitutes path parameters into the operation's path
// template. The configured ad account id fills {ad_account_id} when
// no flag value was given.
func buildPath(cmd *cobra.Command, op *tree.Operation, cfg *config.Config) (string, error) {
	path := op.Path
	for _, p := range op.Params {
		if p.In != "path" {
			continue
		}
		value := stringFlag(cmd, p.Flag)
		if value == "" && p.Name == "ad_account_id" {
			value = cfg.Auth.AdAccountID
		}
		if value == "" {
			return "", fmt.Errorf("missing required path param: %s", p.Name)
		}
		path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(value))
	}
	if strings.Contains(path, "{") {
		return "", fmt.Errorf("unresolved path template: %s", op.Path)
	}
	return path, nil
}

// buildQuery merges --params JSON with per-parameter flags; a flag
// value replaces whatever --params carried for the same key.
func buildQuery(cmd *cobra.Command, op *tree.Operation) ([]client.QueryParam, error) {
	out, err := parseParamsJSON(stringFlag(cmd, "params"), op.Params)
	if err != nil {
		return nil, err
	}

	for _, p := range op.Params {
		if p.In != "query" {
			continue
		}

		if p.SchemaType == "array" {
			values, _ := cmd.Flags().GetStringArray(p.Flag)
			if len(values) > 0 {
				out = removeQueryKey(out, p.Name, p.Style)
				for _, v := range values {
					out = append(out, client.QueryParam{Key: p.Name, Value: v})
				}
			}
			continue
		}

		if p.Style != nil && *p.Style == "deepObject" {
			if raw := stringFlag(cmd, p.Flag); raw != "" {
				out = removeQueryKey(out, p.Name, p.Style)
				value, err := parseJSONSource(raw)
				if err != nil {
					return nil, err
				}
				pairs, err := encodeDeepObject(p.Name, value)
				if err != nil {
					return nil, err
				}
				out = append(out, pairs...)
			}
			continue
		}

		if v := stringFlag(cmd, p.Flag); v != "" {
			out = removeQueryKey(out, p.Name, p.Style)
			out = append(out, client.QueryParam{Key: p.Name, Value: v})
		}
	}

	return out, nil
}

func removeQueryKey(out []client.QueryParam, key string, style *string) []client.QueryParam {
	keep := out[:0]
	if style != nil && *style == "deepObject" {
		prefix := key + "["
		for _, p := range out {
			if p.Key == key || strings.HasPrefix(p.Key, prefix) {
				continue
			}
			keep = append(keep, p)
		}
		return keep
	}
	for _, p := range out {
		if p.Key != key {
			keep = append(keep, p)
		}
	}
	return keep
}

func parseParamsJSON(raw string, params []tree.Param) ([]client.QueryParam, error) {
	if raw == "" {
		return []client.QueryParam{}, nil
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("invalid JSON for --params: %w", err)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("--params must be a JSON object")
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []client.QueryParam{}
	for _, k := range keys {
		v := obj[k]

		style := ""
		for _, p := range params {
			if p.In == "query" && p.Name == k && p.Style != nil {
				style = *p.Style
				break
			}
		}
		if style == "deepObject" {
			pairs, err := encodeDeepObject(k, v)
			if err != nil {
				return nil, err
			}
			out = append(out, pairs...)
			continue
		}

		if items, ok := v.([]any); ok {
			for _, item := range items {
				out = append(out, client.QueryParam{Key: k, Value: jsonValueString(item)})
			}
			continue
		}
		out = append(out, client.QueryParam{Key: k, Value: jsonValueString(v)})
	}
	return out, nil
}

// encodeDeepObject flattens a JSON object into key[sub]=value pairs,
// recursing into nested objects.
func encodeDeepObject(prefix string, value any) ([]client.QueryParam, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("deepObject param must be a JSON object")
	}

	var walk func(out []client.QueryParam, key string, v any) []client.QueryParam
	walk = func(out []client.QueryParam, key string, v any) []client.QueryParam {
		switch v := v.(type) {
		case nil:
			return out
		case []any:
			for _, item := range v {
				out = append(out, client.QueryParam{Key: key, Value: jsonValueString(item)})
			}
			return out
		case map[string]any:
			for _, k := range sortedKeys(v) {
				out = walk(out, key+"["+k+"]", v[k])
			}
			return out
		default:
			return append(out, client.QueryParam{Key: key, Value: jsonValueString(v)})
		}
	}

	out := []client.QueryParam{}
	for _, k := range sortedKeys(obj) {
		out = walk(out, prefix+"["+k+"]", obj[k])
	}
	return out, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func jsonValueString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// buildBody selects the request payload from --body or --form,
// honoring the operation's declared content types.
func buildBody(cmd *cobra.Command, op *tree.Operation) (*client.Body, error) {
	bodyArg := stringFlag(cmd, "body")
	formArg := stringFlag(cmd, "form")

	rb := op.RequestBody
	if rb == nil {
		if bodyArg != "" || formArg != "" {
			return nil, fmt.Errorf("request body not supported for this operation")
		}
		return nil, nil
	}

	if slices.Contains(rb.ContentTypes, "application/json") {
		if bodyArg == "" {
			if rb.Required {
				return nil, fmt.Errorf("--body required")
			}
			return nil, nil
		}
		value, err := parseJSONSource(bodyArg)
		if err != nil {
			return nil, err
		}
		return &client.Body{JSON: value}, nil
	}

	if slices.Contains(rb.ContentTypes, "application/x-www-form-urlencoded") {
		if formArg == "" {
			if rb.Required {
				return nil, fmt.Errorf("--form required")
			}
			return nil, nil
		}
		fields, err := parseFormSource(formArg)
		if err != nil {
			return nil, err
		}
		return &client.Body{Form: fields}, nil
	}

	return nil, fmt.Errorf("unsupported request content types: %s", strings.Join(rb.ContentTypes, ", "))
}

func parseJSONSource(raw string) (any, error) {
	text := raw
	if source.Looks(raw) {
		var err error
		if text, err = source.ReadString(raw); err != nil {
			return nil, err
		}
	}
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return value, nil
}

func parseFormSource(raw string) ([]client.QueryParam, error) {
	value, err := parseJSONSource(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("--form must be a JSON object")
	}

	out := []client.QueryParam{}
	for _, k := range sortedKeys(obj) {
		switch v := obj[k].(type) {
		case []any:
			for _, item := range v {
				out = append(out, client.QueryParam{Key: k, Value: jsonValueString(item)})
			}
		default:
			out = append(out, client.QueryParam{Key: k, Value: jsonValueString(v)})
		}
	}
	return out, nil
}

func joinSorted(values []string, sep string) string {
	sorted := append([]string{}, values...)
	sort.Strings(sorted)
	return strings.Join(sorted, sep)
}
