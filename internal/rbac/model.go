package rbac

// modelText is the fixed policy-language definition: request/policy tuples of
// (subject, object, action), role membership via g grouping, allow-only
// effect, and exact-string matching on object and action. There are no deny
// rules; absence of a matching p rule is deny-by-default.
const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`
