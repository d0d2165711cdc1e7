/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/OpenSim-Technology/IFEM/InputParameters"
	"github.com/OpenSim-Technology/IFEM/LR2D"
	"github.com/OpenSim-Technology/IFEM/model_problems/Elasticity2D"
	"github.com/OpenSim-Technology/IFEM/recovery"
	"github.com/OpenSim-Technology/IFEM/utils"
)

type RecoverJob struct {
	JobFile    string
	OutputFile string
	Profile    bool
}

// recoverCmd represents the recover command
var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover a smooth spline field from a raw field source",
	Long: `
Builds a spline patch, evaluates a manufactured raw field on it and
recovers a globally smooth spline representation using the method chosen
in the YAML job file.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			job = &RecoverJob{}
			err error
		)
		if job.JobFile, err = cmd.Flags().GetString("jobFile"); err != nil {
			panic(err)
		}
		job.OutputFile, _ = cmd.Flags().GetString("output")
		job.Profile, _ = cmd.Flags().GetBool("profile")
		rp := processInput(job)
		RunRecovery(job, rp)
	},
}

func init() {
	rootCmd.AddCommand(recoverCmd)
	recoverCmd.Flags().StringP("jobFile", "I", "", "YAML file describing the recovery job")
	recoverCmd.Flags().StringP("output", "o", "", "write the recovered coefficient table to this YAML file")
	recoverCmd.Flags().BoolP("profile", "p", false, "write a CPU profile of the recovery run")
}

func processInput(job *RecoverJob) (rp *InputParameters.RecoveryParameters) {
	if len(job.JobFile) == 0 {
		fmt.Printf("error: must supply a job file (-I, --jobFile)\n")
		exampleFile := `
########################################
Title: "Recovery Test Case"
Method: SPR          # L2, SPR or Greville
Continuous: true     # L2 only
NGauss: 3            # L2 only
OrderU: 3
OrderV: 3
ElementsU: 8
ElementsV: 8
Field: Quadratic     # Constant, Linear, Quadratic or Stress
Components: 1
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	data, err := os.ReadFile(job.JobFile)
	if err != nil {
		panic(err)
	}
	rp = &InputParameters.RecoveryParameters{}
	if err = rp.Parse(data); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	return
}

func RunRecovery(job *RecoverJob, rp *InputParameters.RecoveryParameters) {
	if job.Profile {
		defer profile.Start(profile.CPUProfile).Stop()
	}
	rp.Print()

	m, err := LR2D.NewUniformMesh(rp.OrderU, rp.OrderV, rp.ElementsU, rp.ElementsV)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	f, err := makeFieldSource(m, rp)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}

	var sField utils.Matrix
	switch rp.Method {
	case "L2":
		sField, err = recovery.ProjectL2(m, f, rp.Continuous, rp.NGauss)
	case "SPR":
		var ans *LR2D.Mesh
		if ans, err = recovery.RecoverSPR(m, f); err == nil {
			sField = coefficientTable(ans)
		}
	case "Greville":
		var ans *LR2D.Mesh
		if ans, err = recovery.ProjectAtGreville(m, f); err == nil {
			sField = coefficientTable(ans)
		}
	}
	if err != nil {
		fmt.Printf("recovery failed: %s\n", err.Error())
		os.Exit(1)
	}

	nc, nb := sField.Dims()
	fmt.Printf("recovered %d component(s) over %d control points\n", nc, nb)
	if len(job.OutputFile) != 0 {
		if err = writeCoefficients(job.OutputFile, rp.Title, sField); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", job.OutputFile)
	}
}

func makeFieldSource(m *LR2D.Mesh, rp *InputParameters.RecoveryParameters) (f recovery.FieldSource, err error) {
	ncomp := rp.Components
	if ncomp < 1 {
		ncomp = 1
	}
	switch rp.Field {
	case "Constant":
		f = &recovery.AnalyticField{
			Mesh: m, NComp: ncomp, Order: 1,
			F: func(x, y float64) []float64 { return utils.ConstArray(ncomp, 1) },
		}
	case "Linear":
		f = &recovery.AnalyticField{
			Mesh: m, NComp: 1, Order: 1,
			F: func(x, y float64) []float64 { return []float64{2*x - 3*y + 1} },
		}
	case "Quadratic":
		f = &recovery.AnalyticField{
			Mesh: m, NComp: 1, Order: 1,
			F: func(x, y float64) []float64 { return []float64{x*x + x*y - y} },
		}
	case "Stress":
		// Constant strain displacement as the primary solution
		m.RebuildDimension(2)
		for _, b := range m.Basis {
			b.Cp[0] = 1.e-3 * b.Greville[0]
			b.Cp[1] = -5.e-4 * b.Greville[1]
		}
		f, err = Elasticity2D.NewStressField(m, Elasticity2D.Material{E: rp.E, Nu: rp.Nu})
	default:
		err = fmt.Errorf("unknown field: %q, expected Constant, Linear, Quadratic or Stress", rp.Field)
	}
	return
}

func coefficientTable(m *LR2D.Mesh) (sField utils.Matrix) {
	var (
		ncomp = m.NumComponents()
		nb    = m.NumBasis()
	)
	sField = utils.NewMatrix(ncomp, nb)
	for i, b := range m.Basis {
		for r := 0; r < ncomp; r++ {
			sField.Set(r, i, b.Cp[r])
		}
	}
	return
}

type coefficientFile struct {
	Title         string      `yaml:"Title"`
	Components    int         `yaml:"Components"`
	ControlPoints [][]float64 `yaml:"ControlPoints"` // one row per component
}

func writeCoefficients(fileName, title string, sField utils.Matrix) error {
	var (
		nc, nb = sField.Dims()
		cf     = coefficientFile{Title: title, Components: nc}
	)
	for r := 0; r < nc; r++ {
		row := make([]float64, nb)
		for i := 0; i < nb; i++ {
			row[i] = sField.At(r, i)
		}
		cf.ControlPoints = append(cf.ControlPoints, row)
	}
	data, err := yaml.Marshal(&cf)
	if err != nil {
		return err
	}
	return os.WriteFile(fileName, data, 0644)
}
