package access

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Effect 规则命中后的效果
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Rule 一条授权规则
//
// 表达式可用变量：
//
//	actor_id  int          匿名为0
//	roles     list(string)
//	action    string
//	kind      string       资源类型
//	owner_id  int          资源归属，无归属为0
type Rule struct {
	Name   string
	Effect Effect
	Expr   string
}

// DefaultRules 管理员全部放行；任何人可读目录；客户只能操作自己的购物车、订单和退货申请
var DefaultRules = []Rule{
	{
		Name:   "admin",
		Effect: EffectAllow,
		Expr:   `"admin" in roles`,
	},
	{
		Name:   "catalog-read",
		Effect: EffectAllow,
		Expr:   `action == "catalog:read"`,
	},
	{
		Name:   "customer-own-resources",
		Effect: EffectAllow,
		Expr: `"customer" in roles && actor_id != 0 && owner_id == actor_id &&
			action in ["cart:read", "cart:write", "order:create", "order:read", "return:create", "return:read"]`,
	},
}

type compiledRule struct {
	Rule
	program cel.Program
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("actor_id", cel.IntType),
		cel.Variable("roles", cel.ListType(cel.StringType)),
		cel.Variable("action", cel.StringType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("owner_id", cel.IntType),
	)
}

func compile(env *cel.Env, rules []Rule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if r.Effect != EffectAllow && r.Effect != EffectDeny {
			return nil, fmt.Errorf("规则%s的effect无效: %q", r.Name, r.Effect)
		}
		ast, iss := env.Compile(r.Expr)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("规则%s编译失败: %w", r.Name, iss.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("规则%s必须返回bool", r.Name)
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("规则%s加载失败: %w", r.Name, err)
		}
		out = append(out, compiledRule{Rule: r, program: prg})
	}
	return out, nil
}
