package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"github.com/Agrid-Dev/hvacrux/internal/building"
	"github.com/Agrid-Dev/hvacrux/internal/estimator"
)

type SweepRange struct {
	From float64
	To   float64
	Step float64
}

// SweepOutdoorTemperature writes one CSV row per outdoor temperature for the
// sample building held at a fixed indoor temperature.
func SweepOutdoorTemperature(filename string, indoor float64, r SweepRange) error {
	if r.Step <= 0 || r.To < r.From {
		return fmt.Errorf("invalid sweep range %+v", r)
	}

	env, err := building.EnvelopeFromMaterials(
		120, building.WoodFrameInsulated16Inch,
		60, building.AsphaltShingles,
		building.DoublePaneGlassAirFilled,
	)
	if err != nil {
		return fmt.Errorf("failed to build envelope: %v", err)
	}
	b := building.Building{Floors: estimator.DefaultFloors(), Envelope: env}

	est, err := estimator.New(b, building.DesignConditions{OutdoorTemp: r.From, IndoorTemp: indoor})
	if err != nil {
		return fmt.Errorf("failed to create estimator: %v", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"Outdoor", "Indoor", "HeatLoss", "HeatGain", "CoolingLoad", "HeatingLoad"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	steps := int((r.To-r.From)/r.Step) + 1
	for i := range steps {
		outdoor := r.From + float64(i)*r.Step
		if err := est.SetOutdoorTemperature(outdoor); err != nil {
			return fmt.Errorf("failed to set outdoor temperature: %v", err)
		}
		rep := est.Get().Report

		if err := writer.Write([]string{
			fmt.Sprintf("%.2f", outdoor),
			fmt.Sprintf("%.2f", indoor),
			fmt.Sprintf("%.2f", rep.HeatLoss),
			fmt.Sprintf("%.2f", rep.HeatGain),
			fmt.Sprintf("%.2f", rep.CoolingLoad),
			fmt.Sprintf("%.2f", rep.HeatingLoad),
		}); err != nil {
			return fmt.Errorf("failed to write CSV record: %v", err)
		}
	}

	return nil
}

func main() {
	if err := SweepOutdoorTemperature("load_sweep.csv", 21, SweepRange{From: -20, To: 40, Step: 1}); err != nil {
		log.Fatal(err)
	}
}
