package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file describing one recovery job
type RecoveryParameters struct {
	Title      string  `yaml:"Title"`
	Method     string  `yaml:"Method"`     // L2, SPR or Greville
	Continuous bool    `yaml:"Continuous"` // weighted quadrature vs reduced collocation (L2 only)
	NGauss     int     `yaml:"NGauss"`     // quadrature order for continuous L2 projection
	OrderU     int     `yaml:"OrderU"`
	OrderV     int     `yaml:"OrderV"`
	ElementsU  int     `yaml:"ElementsU"`
	ElementsV  int     `yaml:"ElementsV"`
	Field      string  `yaml:"Field"` // manufactured raw field name
	Components int     `yaml:"Components"`
	E          float64 `yaml:"E"`  // material parameters for the Stress field
	Nu         float64 `yaml:"Nu"`
}

func (rp *RecoveryParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, rp); err != nil {
		return err
	}
	return rp.Validate()
}

func (rp *RecoveryParameters) Validate() error {
	switch rp.Method {
	case "L2", "SPR", "Greville":
	default:
		return fmt.Errorf("unknown recovery method: %q, expected L2, SPR or Greville", rp.Method)
	}
	if rp.OrderU < 2 || rp.OrderV < 2 {
		return fmt.Errorf("basis orders must be at least 2: OrderU=%v OrderV=%v", rp.OrderU, rp.OrderV)
	}
	if rp.ElementsU < 1 || rp.ElementsV < 1 {
		return fmt.Errorf("element counts must be at least 1: ElementsU=%v ElementsV=%v", rp.ElementsU, rp.ElementsV)
	}
	if rp.Method == "L2" && rp.Continuous && rp.NGauss < 1 {
		return fmt.Errorf("continuous L2 projection needs NGauss >= 1, got %v", rp.NGauss)
	}
	return nil
}

func (rp *RecoveryParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", rp.Title)
	fmt.Printf("[%s]\t\t\t= Method\n", rp.Method)
	fmt.Printf("[%v]\t\t\t= Continuous\n", rp.Continuous)
	fmt.Printf("[%d]\t\t\t\t= NGauss\n", rp.NGauss)
	fmt.Printf("[%d x %d]\t\t\t= Basis Orders\n", rp.OrderU, rp.OrderV)
	fmt.Printf("[%d x %d]\t\t\t= Elements\n", rp.ElementsU, rp.ElementsV)
	fmt.Printf("[%s]\t\t= Field\n", rp.Field)
}
