package directory

import "github.com/medtravel/hospitaldirectory/internal/domain/entities"

const (
	idH1 = "0b6a4a4e-1c1f-4d52-9d0e-5a1f00000001"
	idH2 = "0b6a4a4e-1c1f-4d52-9d0e-5a1f00000002"
	idH3 = "0b6a4a4e-1c1f-4d52-9d0e-5a1f00000003"
	idB1 = "3f1e2d4c-7a8b-4c9d-8e0f-6b2a00000001"
	idB2 = "3f1e2d4c-7a8b-4c9d-8e0f-6b2a00000002"
	idB3 = "3f1e2d4c-7a8b-4c9d-8e0f-6b2a00000003"
	idD1 = "9c8b7a6d-5e4f-4a3b-a2c1-7d0e00000001"
	idD2 = "9c8b7a6d-5e4f-4a3b-a2c1-7d0e00000002"
	idT1 = "5d4c3b2a-1f0e-4d9c-b8a7-8e1f00000001"
	idT2 = "5d4c3b2a-1f0e-4d9c-b8a7-8e1f00000002"

	idSuva = "7a6b5c4d-3e2f-4a1b-90c8-9f2a00000001"
	idNadi = "7a6b5c4d-3e2f-4a1b-90c8-9f2a00000002"

	idCardiology  = "1a2b3c4d-5e6f-4a7b-8c9d-0e1f00000001"
	idOrthopedics = "1a2b3c4d-5e6f-4a7b-8c9d-0e1f00000002"
	idHeartCare   = "2b3c4d5e-6f7a-4b8c-9d0e-1f2a00000001"
	idBoneJoint   = "2b3c4d5e-6f7a-4b8c-9d0e-1f2a00000002"
)

var (
	suva = entities.City{ID: idSuva, Name: "Suva", State: "Central", Country: "Fiji"}
	nadi = entities.City{ID: idNadi, Name: "Nadi", State: "Western", Country: "Fiji"}

	heartCare = entities.Department{ID: idHeartCare, Name: "Heart Care"}
	boneJoint = entities.Department{ID: idBoneJoint, Name: "Bone & Joint"}

	cardiology  = entities.Specialization{ID: idCardiology, Name: "Cardiology", Departments: []entities.Department{heartCare}}
	orthopedics = entities.Specialization{ID: idOrthopedics, Name: "Orthopedics", Departments: []entities.Department{boneJoint}}
)

func doctorD1() entities.Doctor {
	return entities.Doctor{ID: idD1, Name: "Dr Ana Cakau", Specializations: []entities.Specialization{cardiology}, Popular: true}
}

func doctorD2() entities.Doctor {
	return entities.Doctor{ID: idD2, Name: "Dr Ben Waqa", Specializations: []entities.Specialization{orthopedics}}
}

func angioplasty(cost string) entities.Treatment {
	return entities.Treatment{ID: idT1, Name: "Angioplasty", Cost: cost, Popular: true, Departments: []entities.Department{heartCare}}
}

func kneeReplacement() entities.Treatment {
	return entities.Treatment{ID: idT2, Name: "Knee Replacement", Cost: "$9000", Departments: []entities.Department{boneJoint}}
}

// sampleHospitals builds the reference directory: H1 and H2 in Suva both
// offering Angioplasty at different prices, H3 in Nadi offering knee
// replacement. D1 is listed under H1 directly and under H1's branch.
func sampleHospitals() []entities.Hospital {
	return []entities.Hospital{
		{
			ID:      idH1,
			Name:    "Pacific Heart Group",
			Slug:    "pacific-heart",
			Popular: true,
			Doctors: []entities.Doctor{doctorD1()},
			Branches: []entities.Branch{{
				ID:         idB1,
				Name:       "Pacific Heart Suva",
				Cities:     []entities.City{suva},
				Doctors:    []entities.Doctor{doctorD1()},
				Treatments: []entities.Treatment{angioplasty("$5000")},
				Popular:    true,
			}},
		},
		{
			ID:   idH2,
			Name: "Capital Medical Centre",
			Branches: []entities.Branch{{
				ID:         idB2,
				Name:       "Capital Medical Suva",
				Cities:     []entities.City{suva},
				Treatments: []entities.Treatment{angioplasty("$4500")},
			}},
		},
		{
			ID:   idH3,
			Name: "Western Orthopaedic Hospital",
			Branches: []entities.Branch{{
				ID:         idB3,
				Name:       "Western Orthopaedic Nadi",
				Cities:     []entities.City{nadi},
				Doctors:    []entities.Doctor{doctorD2()},
				Treatments: []entities.Treatment{kneeReplacement()},
			}},
		},
	}
}
