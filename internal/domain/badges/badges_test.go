package badges

import (
	"fmt"
	"testing"

	"github.com/okian/buildlab/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func num(v float64) model.Number { return model.NewNumber(v) }

func req(badge, attr, category string, bronze, silver, gold, hof, legend float64) model.BadgeRequirement {
	r := model.BadgeRequirement{Badge: badge, Attribute: attr, Category: category}
	set := func(n *model.Number, v float64) {
		if v > 0 {
			*n = num(v)
		}
	}
	set(&r.Bronze, bronze)
	set(&r.Silver, silver)
	set(&r.Gold, gold)
	set(&r.HoF, hof)
	set(&r.Legend, legend)
	return r
}

func caps(h int, attrs map[string]int) model.CapSet {
	return model.CapSet{Position: "SG", Height: h, Attributes: attrs}
}

func TestAttained(t *testing.T) {
	Convey("Given a requirement with every threshold", t, func() {
		r := req("Deadeye", "Three-Point Shot", "Shooting", 70, 78, 85, 92, 97)

		Convey("Then each band maps one tier down from its threshold name", func() {
			So(Attained(99, &r), ShouldEqual, model.TierHallOfFame)
			So(Attained(97, &r), ShouldEqual, model.TierHallOfFame)
			So(Attained(92, &r), ShouldEqual, model.TierGold)
			So(Attained(85, &r), ShouldEqual, model.TierSilver)
			So(Attained(70, &r), ShouldEqual, model.TierBronze)
			So(Attained(69, &r), ShouldEqual, model.TierNone)
		})
	})

	Convey("Given a requirement with missing thresholds", t, func() {
		Convey("When Legend is missing", func() {
			r := req("Deadeye", "x", "Shooting", 70, 0, 80, 88, 0)
			Convey("Then it is inferred as HoF+5", func() {
				So(Attained(93, &r), ShouldEqual, model.TierHallOfFame)
				So(Attained(92, &r), ShouldEqual, model.TierGold)
			})
		})

		Convey("When HoF and Legend are missing", func() {
			r := req("Deadeye", "x", "Shooting", 70, 0, 80, 0, 0)
			Convey("Then HoF is Gold+5 and Legend falls back to 99", func() {
				So(Attained(85, &r), ShouldEqual, model.TierGold)
				So(Attained(98, &r), ShouldEqual, model.TierGold)
				So(Attained(99, &r), ShouldEqual, model.TierHallOfFame)
			})
		})

		Convey("When only Silver is present", func() {
			r := req("Deadeye", "x", "Shooting", 0, 72, 0, 0, 0)
			Convey("Then Gold is Silver+5 and the rest use the defaults", func() {
				So(Attained(77, &r), ShouldEqual, model.TierSilver)
				So(Attained(76, &r), ShouldEqual, model.TierBronze)
				So(Attained(74, &r), ShouldEqual, model.TierNone)
				So(Attained(94, &r), ShouldEqual, model.TierGold)
			})
		})

		Convey("When nothing is present", func() {
			r := req("Deadeye", "x", "Shooting", 0, 0, 0, 0, 0)
			Convey("Then the hard defaults 99/94/85/75 apply", func() {
				So(Attained(99, &r), ShouldEqual, model.TierHallOfFame)
				So(Attained(94, &r), ShouldEqual, model.TierGold)
				So(Attained(85, &r), ShouldEqual, model.TierSilver)
				So(Attained(75, &r), ShouldEqual, model.TierBronze)
				So(Attained(74, &r), ShouldEqual, model.TierNone)
			})
		})
	})
}

func TestCap(t *testing.T) {
	Convey("Given attained tiers and ceilings", t, func() {
		So(Cap(model.TierHallOfFame, model.TierGold), ShouldEqual, model.TierGold)
		So(Cap(model.TierSilver, model.TierGold), ShouldEqual, model.TierSilver)
		So(Cap(model.TierHallOfFame, model.TierLegend), ShouldEqual, model.TierHallOfFame)
		So(Cap(model.TierHallOfFame, model.TierHallOfFame), ShouldEqual, model.TierHallOfFame)
		So(Cap(model.TierBronze, model.TierNone), ShouldEqual, model.TierNone)
	})
}

func TestResolve(t *testing.T) {
	r := New()

	Convey("Given missing badge data", t, func() {
		Convey("Then the result is empty and nothing panics", func() {
			set := r.Resolve(caps(80, map[string]int{"threePoint": 99}), nil, nil)
			So(set.Badges, ShouldResemble, map[string]string{})
			So(set.HoF, ShouldEqual, "")
			So(set.Gold, ShouldEqual, "")
		})
	})

	Convey("Given a height ceiling of Gold", t, func() {
		reqs := []model.BadgeRequirement{req("Deadeye", "Three-Point Shot", "Shooting", 70, 78, 85, 90, 95)}
		ceilings := []model.BadgeCeiling{{Badge: "Deadeye", Levels: map[string]string{"six_four": "Gold", "six_five": "HoF"}}}

		Convey("When the rating qualifies for Hall of Fame at 6'4\"", func() {
			set := r.Resolve(caps(76, map[string]int{"threePoint": 99}), reqs, ceilings)
			Convey("Then the tier is capped at Gold", func() {
				So(set.Badges["Deadeye"], ShouldEqual, "Gold")
				So(set.Gold, ShouldEqual, "Deadeye")
				So(set.HoF, ShouldEqual, "")
			})
		})

		Convey("When the build is 6'5\"", func() {
			set := r.Resolve(caps(77, map[string]int{"threePoint": 99}), reqs, ceilings)
			Convey("Then the HoF ceiling permits Hall of Fame", func() {
				So(set.Badges["Deadeye"], ShouldEqual, "Hall of Fame")
				So(set.HoF, ShouldEqual, "Deadeye")
			})
		})

		Convey("When the height has no ceiling entry", func() {
			set := r.Resolve(caps(84, map[string]int{"threePoint": 99}), reqs, ceilings)
			Convey("Then the badge is unrestricted", func() {
				So(set.Badges["Deadeye"], ShouldEqual, "Hall of Fame")
			})
		})

		Convey("When the ceiling names no tier", func() {
			blocked := []model.BadgeCeiling{{Badge: "Deadeye", Levels: map[string]string{"six_four": "None"}}}
			set := r.Resolve(caps(76, map[string]int{"threePoint": 99}), reqs, blocked)
			Convey("Then the badge is discarded", func() {
				So(set.Badges, ShouldNotContainKey, "Deadeye")
			})
		})
	})

	Convey("Given five qualifying Defense badges", t, func() {
		attrs := map[string]int{"perimeterDefense": 99, "steal": 90, "block": 86, "interiorDefense": 76, "speed": 80}
		reqs := []model.BadgeRequirement{
			req("Glove", "Steal", "Defense", 70, 75, 80, 88, 95),                    // Gold
			req("Pogo Stick", "Speed", "Defense", 70, 75, 82, 90, 95),               // Bronze
			req("Clamps", "Perimeter Defense", "Defense", 70, 75, 80, 88, 95),       // Hall of Fame
			req("Anchor", "Block", "Defense", 70, 75, 84, 90, 95),                   // Silver
			req("Post Lockdown", "Interior Defense", "Defense", 70, 75, 80, 88, 95), // Bronze
		}

		set := r.Resolve(caps(80, attrs), reqs, nil)

		Convey("Then only the three highest tiers are kept", func() {
			So(len(set.Badges), ShouldEqual, 3)
			So(set.Badges["Clamps"], ShouldEqual, "Hall of Fame")
			So(set.Badges["Glove"], ShouldEqual, "Gold")
			So(set.Badges["Anchor"], ShouldEqual, "Silver")
		})

		Convey("And the highlights come from the first HoF and Gold badges", func() {
			So(set.HoF, ShouldEqual, "Clamps")
			So(set.Gold, ShouldEqual, "Glove")
		})
	})

	Convey("Given tied tiers in one category", t, func() {
		var reqs []model.BadgeRequirement
		for i := 0; i < 5; i++ {
			reqs = append(reqs, req(fmt.Sprintf("B%d", i), "Ball Handle", "Playmaking", 70, 0, 0, 0, 0))
		}
		set := r.Resolve(caps(74, map[string]int{"ballHandle": 80}), reqs, nil)

		Convey("Then encounter order breaks the tie", func() {
			So(set.Badges, ShouldResemble, map[string]string{"B0": "Bronze", "B1": "Bronze", "B2": "Bronze"})
		})
	})

	Convey("Given a badge with several requirement rows", t, func() {
		reqs := []model.BadgeRequirement{
			req("Rise Up", "Standing Dunk", "Inside Scoring", 70, 75, 80, 85, 90),
			req("Rise Up", "Vertical", "Finishing", 70, 75, 80, 85, 90),
			req("Rise Up", "Strength", "Finishing", 70, 75, 80, 85, 90),
		}
		attrs := map[string]int{"standingDunk": 80, "vertical": 90, "strength": 72}

		set := r.Resolve(caps(82, attrs), reqs, nil)

		Convey("Then the highest tier across rows wins", func() {
			So(set.Badges["Rise Up"], ShouldEqual, "Hall of Fame")
		})
	})

	Convey("Given aliased scoring categories", t, func() {
		reqs := []model.BadgeRequirement{
			req("Limitless Range", "Three-Point Shot", "Outside Scoring", 70, 0, 0, 0, 0),
			req("Set Shot", "Midrange", "Shooting", 70, 0, 0, 0, 0),
			req("Mystery", "Free Throw", "Hustle", 70, 0, 0, 0, 0),
		}
		attrs := map[string]int{"threePoint": 80, "midrange": 80, "freeThrow": 80}
		set := r.Resolve(caps(78, attrs), reqs, nil)

		Convey("Then Outside Scoring lands in Shooting and unknown categories are dropped", func() {
			So(set.Badges, ShouldResemble, map[string]string{"Limitless Range": "Bronze", "Set Shot": "Bronze"})
		})
	})

	Convey("Given a full Finishing group and Inside Scoring badges", t, func() {
		reqs := []model.BadgeRequirement{
			req("F1", "Driving Dunk", "Finishing", 60, 65, 70, 75, 80),
			req("F2", "Driving Dunk", "Finishing", 60, 65, 70, 75, 80),
			req("F3", "Driving Dunk", "Finishing", 60, 65, 70, 75, 80),
			req("I1", "Close Shot", "Inside Scoring", 60, 65, 70, 80, 95),
			req("I2", "Close Shot", "Inside Scoring", 60, 65, 70, 80, 95),
		}
		attrs := map[string]int{"drivingDunk": 90, "closeShot": 85}
		set := r.Resolve(caps(78, attrs), reqs, nil)

		Convey("Then Inside Scoring keeps its own top picks", func() {
			So(len(set.Badges), ShouldEqual, 5)
			So(set.Badges, ShouldResemble, map[string]string{
				"F1": "Hall of Fame", "F2": "Hall of Fame", "F3": "Hall of Fame",
				"I1": "Gold", "I2": "Gold",
			})
		})
	})

	Convey("Given requirement rows that cannot apply", t, func() {
		tall := req("Post Fade", "Post Control", "Finishing", 70, 0, 0, 0, 0)
		tall.MinHeight = "6'9\""
		tall.MaxHeight = "7'4\""
		halfWindow := req("Float Game", "Close Shot", "Finishing", 70, 0, 0, 0, 0)
		halfWindow.MinHeight = "6'9\""
		zero := req("Slippery", "Ball Handle", "Playmaking", 70, 0, 0, 0, 0)
		unknown := req("Hustler", "Hustle", "General", 70, 0, 0, 0, 0)
		nameless := req("", "Close Shot", "Finishing", 70, 0, 0, 0, 0)

		attrs := map[string]int{"postControl": 90, "closeShot": 90, "ballHandle": 0}
		set := r.Resolve(caps(76, attrs), []model.BadgeRequirement{tall, halfWindow, zero, unknown, nameless}, nil)

		Convey("Then only rows inside their height window with a rated attribute count", func() {
			So(set.Badges, ShouldResemble, map[string]string{"Float Game": "Silver"})
		})
	})

	Convey("Given a build without height", t, func() {
		reqs := []model.BadgeRequirement{req("Deadeye", "Three-Point Shot", "Shooting", 70, 0, 0, 0, 0)}
		ceilings := []model.BadgeCeiling{{Badge: "Deadeye", Levels: map[string]string{"six_eight": "None"}}}
		set := r.Resolve(caps(0, map[string]int{"threePoint": 80}), reqs, ceilings)

		Convey("Then 6'8\" is assumed", func() {
			So(set.Badges, ShouldBeEmpty)
		})
	})

	Convey("Given a custom per-category limit", t, func() {
		one := New(WithPerCategory(1), WithDefaultHeight(74))
		reqs := []model.BadgeRequirement{
			req("A", "Steal", "Defense", 70, 0, 0, 0, 0),
			req("B", "Block", "Defense", 70, 0, 0, 0, 0),
		}
		set := one.Resolve(caps(0, map[string]int{"steal": 80, "block": 80}), reqs, nil)
		So(set.Badges, ShouldResemble, map[string]string{"A": "Bronze"})
	})
}
