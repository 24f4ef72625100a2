package loader

import "github.com/hashicorp/hcl/v2"

// variableBlock declares a named value usable as var.<name> in any other
// block attribute.
type variableBlock struct {
	Name        string         `hcl:"name,label"`
	Value       hcl.Expression `hcl:"value"`
	Description string         `hcl:"description,optional"`
}

// networkBlock declares a virtual network and its address block.
type networkBlock struct {
	Name string `hcl:"name,label"`
	CIDR string `hcl:"cidr"`
}

// subnetBlock declares a slice of a network in one availability zone.
type subnetBlock struct {
	Name       string `hcl:"name,label"`
	Network    string `hcl:"network"`
	CIDR       string `hcl:"cidr"`
	Zone       string `hcl:"zone"`
	Visibility string `hcl:"visibility"`
}

// routeBlock is a single forwarding rule inside a route_table block.
type routeBlock struct {
	Destination string `hcl:"destination"`
	Gateway     string `hcl:"gateway"`
}

// routeTableBlock declares a route table and the subnets it serves.
type routeTableBlock struct {
	Name    string        `hcl:"name,label"`
	Subnets []string      `hcl:"subnets"`
	Routes  []*routeBlock `hcl:"route,block"`
}

// internetGatewayBlock declares the internet gateway of a network.
type internetGatewayBlock struct {
	Name    string `hcl:"name,label"`
	Network string `hcl:"network"`
}

// natGatewayBlock declares a NAT gateway hosted in a public subnet.
type natGatewayBlock struct {
	Name    string `hcl:"name,label"`
	Subnet  string `hcl:"subnet"`
	Address string `hcl:"address,optional"`
}

// healthCheckBlock configures probing inside a target_group block.
type healthCheckBlock struct {
	Path             string `hcl:"path"`
	IntervalSeconds  int    `hcl:"interval_seconds,optional"`
	HealthyThreshold int    `hcl:"healthy_threshold,optional"`
}

// targetGroupBlock declares a named backend set.
type targetGroupBlock struct {
	Name        string            `hcl:"name,label"`
	Port        int               `hcl:"port"`
	Protocol    string            `hcl:"protocol"`
	HealthCheck *healthCheckBlock `hcl:"health_check,block"`
}

// listenerBlock is a single listener inside a load_balancer block.
type listenerBlock struct {
	Port       int    `hcl:"port"`
	Protocol   string `hcl:"protocol"`
	Forward    string `hcl:"forward,optional"`
	RedirectTo int    `hcl:"redirect_to,optional"`
}

// loadBalancerBlock declares a load balancer over public subnets.
type loadBalancerBlock struct {
	Name      string           `hcl:"name,label"`
	Subnets   []string         `hcl:"subnets"`
	Listeners []*listenerBlock `hcl:"listener,block"`
}

// serviceBlock declares a compute service placement.
type serviceBlock struct {
	Name           string   `hcl:"name,label"`
	Subnets        []string `hcl:"subnets"`
	SecurityGroup  string   `hcl:"security_group,optional"`
	TargetGroup    string   `hcl:"target_group,optional"`
	AssignPublicIP bool     `hcl:"assign_public_ip,optional"`
}

// fileRoot decodes every supported top-level block from one file.
type fileRoot struct {
	Variables        []*variableBlock        `hcl:"variable,block"`
	Networks         []*networkBlock         `hcl:"network,block"`
	Subnets          []*subnetBlock          `hcl:"subnet,block"`
	RouteTables      []*routeTableBlock      `hcl:"route_table,block"`
	InternetGateways []*internetGatewayBlock `hcl:"internet_gateway,block"`
	NatGateways      []*natGatewayBlock      `hcl:"nat_gateway,block"`
	LoadBalancers    []*loadBalancerBlock    `hcl:"load_balancer,block"`
	TargetGroups     []*targetGroupBlock     `hcl:"target_group,block"`
	Services         []*serviceBlock         `hcl:"service,block"`
	Remain           hcl.Body                `hcl:",remain"`
}

// variableRoot extracts only variable blocks during the first decoding pass,
// before the evaluation context exists.
type variableRoot struct {
	Variables []*variableBlock `hcl:"variable,block"`
	Remain    hcl.Body         `hcl:",remain"`
}
